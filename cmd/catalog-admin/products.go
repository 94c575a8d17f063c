package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/target/catalog-admin/internal/domain/model"
	"github.com/target/catalog-admin/internal/service"
)

func runProducts(ctx *commandContext, args []string) error {
	return subcommand(ctx, "products", map[string]commandFn{
		"list":        runProductsList,
		"get":         runProductsGet,
		"create":      runProductsCreate,
		"update":      runProductsUpdate,
		"delete":      runProductsDelete,
		"restore":     runProductsRestore,
		"toggle":      runProductsToggle,
		"search":      runProductsSearch,
		"semantic":    runProductsSemantic,
		"categories":  runProductsCategories,
		"price-range": runProductsPriceRange,
		"available":   runProductsAvailable,
	}, args)
}

func productTable(items []model.Product) tableFn {
	return func(tw *tabwriter.Writer) error {
		if err := row(tw, "ID", "NAME", "CATEGORY", "PRICE", "STOCK", "ACTIVE"); err != nil {
			return err
		}
		for _, p := range items {
			err := row(tw, p.ID, p.Name, orDash(p.Category), strconv.FormatFloat(p.Price, 'f', 2, 64), p.StockQuantity, p.IsActive())
			if err != nil {
				return err
			}
		}
		return nil
	}
}

func pageTable[T any](page *model.Page[T], items tableFn) tableFn {
	return func(tw *tabwriter.Writer) error {
		if err := items(tw); err != nil {
			return err
		}
		if page.TotalPages > 1 {
			return row(tw, fmt.Sprintf("page %d/%d, %d total", page.Number+1, page.TotalPages, page.TotalElements))
		}
		return nil
	}
}

func runProductsList(ctx *commandContext, args []string) error {
	var (
		out      outputOptions
		opts     service.ListProductsOptions
		minPrice optionalFloat
		maxPrice optionalFloat
	)
	fs := newFlagSet("products list", ctx.Stderr)
	addOutputFlags(fs, &out)
	fs.IntVar(&opts.Page, "page", 0, "Zero-based page number")
	fs.IntVar(&opts.Size, "size", 0, "Page size (10, 20, 50 or 100)")
	fs.StringVar(&opts.Sort, "sort", "", "Sort expression, e.g. name,asc")
	fs.StringVar(&opts.Category, "category", "", "Only this category")
	fs.Var(&minPrice, "min-price", "Minimum price")
	fs.Var(&maxPrice, "max-price", "Maximum price")
	fs.BoolVar(&opts.ActiveOnly, "active", false, "Only active products")
	fs.BoolVar(&opts.All, "all", false, "Every product, unpaged")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := out.validate(); err != nil {
		return err
	}
	opts.MinPrice, opts.MaxPrice = minPrice.v, maxPrice.v

	page, err := ctx.App.Products.List(ctx.Ctx, opts)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, page, pageTable(page, productTable(page.Content)))
}

func runProductsGet(ctx *commandContext, args []string) error {
	var out outputOptions
	fs := newFlagSet("products get", ctx.Stderr)
	addOutputFlags(fs, &out)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := out.validate(); err != nil {
		return err
	}
	id, err := parseID(positional, "product")
	if err != nil {
		return err
	}

	p, err := ctx.App.Products.Get(ctx.Ctx, id)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, p, productTable([]model.Product{*p}))
}

// productFlags binds the create/update form to fs.
func productFlags(fs *flag.FlagSet, form *model.ProductForm, inactive *optionalBool) {
	fs.StringVar(&form.Name, "name", "", "Product name")
	fs.StringVar(&form.Description, "description", "", "Description")
	fs.StringVar(&form.Price, "price", "", "Price")
	fs.StringVar(&form.Category, "category", "", "Category")
	fs.StringVar(&form.StockQuantity, "stock", "", "Stock quantity")
	fs.Var(inactive, "inactive", "Create or save the product as inactive")
}

func applyInactive(form *model.ProductForm, inactive optionalBool) {
	if inactive.v != nil {
		active := !*inactive.v
		form.Active = &active
	}
}

func runProductsCreate(ctx *commandContext, args []string) error {
	var (
		out      outputOptions
		form     model.ProductForm
		inactive optionalBool
	)
	fs := newFlagSet("products create", ctx.Stderr)
	addOutputFlags(fs, &out)
	productFlags(fs, &form, &inactive)
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := out.validate(); err != nil {
		return err
	}
	applyInactive(&form, inactive)

	p, err := ctx.App.Products.Create(ctx.Ctx, form)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, p, productTable([]model.Product{*p}))
}

// runProductsUpdate replaces a product. Flags that are not given keep the
// product's current values.
func runProductsUpdate(ctx *commandContext, args []string) error {
	var (
		out      outputOptions
		form     model.ProductForm
		inactive optionalBool
	)
	fs := newFlagSet("products update", ctx.Stderr)
	addOutputFlags(fs, &out)
	productFlags(fs, &form, &inactive)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := out.validate(); err != nil {
		return err
	}
	id, err := parseID(positional, "product")
	if err != nil {
		return err
	}

	current, err := ctx.App.Products.Get(ctx.Ctx, id)
	if err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["name"] {
		form.Name = current.Name
	}
	if !set["description"] {
		form.Description = current.Description
	}
	if !set["price"] {
		form.Price = strconv.FormatFloat(current.Price, 'f', -1, 64)
	}
	if !set["category"] {
		form.Category = current.Category
	}
	if !set["stock"] {
		form.StockQuantity = strconv.Itoa(current.StockQuantity)
	}
	form.Active = current.Active
	applyInactive(&form, inactive)

	p, err := ctx.App.Products.Update(ctx.Ctx, id, form)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, p, productTable([]model.Product{*p}))
}

func runProductsDelete(ctx *commandContext, args []string) error {
	return productAction(ctx, "delete", args, func(id int64) (string, error) {
		return "deactivated", ctx.App.Products.Delete(ctx.Ctx, id)
	})
}

func runProductsRestore(ctx *commandContext, args []string) error {
	return productAction(ctx, "restore", args, func(id int64) (string, error) {
		return "restored", ctx.App.Products.Restore(ctx.Ctx, id)
	})
}

func runProductsToggle(ctx *commandContext, args []string) error {
	return productAction(ctx, "toggle", args, func(id int64) (string, error) {
		active, err := ctx.App.Products.Toggle(ctx.Ctx, id)
		if active {
			return "restored", err
		}
		return "deactivated", err
	})
}

func productAction(ctx *commandContext, name string, args []string, fn func(id int64) (string, error)) error {
	fs := newFlagSet("products "+name, ctx.Stderr)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	id, err := parseID(positional, "product")
	if err != nil {
		return err
	}
	verb, err := fn(id)
	if err != nil {
		return err
	}
	return writef(ctx.Stdout, "Product %d %s\n", id, verb)
}

func runProductsSearch(ctx *commandContext, args []string) error {
	return productSearch(ctx, "search", args, false)
}

func runProductsSemantic(ctx *commandContext, args []string) error {
	return productSearch(ctx, "semantic", args, true)
}

func productSearch(ctx *commandContext, name string, args []string, semantic bool) error {
	var (
		out  outputOptions
		opts = service.SearchOptions{Semantic: semantic}
	)
	fs := newFlagSet("products "+name, ctx.Stderr)
	addOutputFlags(fs, &out)
	if !semantic {
		fs.StringVar(&opts.Category, "category", "", "Only this category")
	}
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := out.validate(); err != nil {
		return err
	}

	items, err := ctx.App.Products.Search(ctx.Ctx, strings.Join(positional, " "), opts)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, items, productTable(items))
}

func runProductsCategories(ctx *commandContext, args []string) error {
	var out outputOptions
	fs := newFlagSet("products categories", ctx.Stderr)
	addOutputFlags(fs, &out)
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := out.validate(); err != nil {
		return err
	}

	cats := ctx.App.Products.Categories(ctx.Ctx)
	return render(ctx.Stdout, out, cats, func(tw *tabwriter.Writer) error {
		for _, c := range cats {
			if err := row(tw, c); err != nil {
				return err
			}
		}
		return nil
	})
}

func runProductsPriceRange(ctx *commandContext, args []string) error {
	var (
		out      outputOptions
		minPrice float64
		maxPrice float64
	)
	fs := newFlagSet("products price-range", ctx.Stderr)
	addOutputFlags(fs, &out)
	fs.Float64Var(&minPrice, "min", 0, "Minimum price")
	fs.Float64Var(&maxPrice, "max", 0, "Maximum price")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := out.validate(); err != nil {
		return err
	}

	items, err := ctx.App.Products.PriceRange(ctx.Ctx, minPrice, maxPrice)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, items, productTable(items))
}

func runProductsAvailable(ctx *commandContext, args []string) error {
	var (
		out      outputOptions
		minStock int
	)
	fs := newFlagSet("products available", ctx.Stderr)
	addOutputFlags(fs, &out)
	fs.IntVar(&minStock, "min-stock", 1, "Minimum units in stock")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := out.validate(); err != nil {
		return err
	}

	items, err := ctx.App.Products.Available(ctx.Ctx, minStock)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, items, productTable(items))
}
