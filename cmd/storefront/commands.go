package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"greenthumb/internal/admin"
	"greenthumb/internal/auth"
	"greenthumb/internal/catalog"
	"greenthumb/internal/model"
)

// terminalConfirmer asks destructive-action confirmations on stdin.
type terminalConfirmer struct{}

func (terminalConfirmer) Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes" || answer == "s" || answer == "si"
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "GreenThumb storefront and admin console",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Resolve the session up front; a failed sync already forced a
			// logout, so commands simply run unauthenticated afterwards.
			if err := a.session.Initialize(cmd.Context()); err != nil {
				a.log.Warnw("session initialize", "error", err)
			}
		},
	}

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newRegisterCmd(a),
		newWhoamiCmd(a),
		newProductsCmd(a),
		newCategoriesCmd(a),
		newCartCmd(a),
		newDashboardCmd(a),
	)
	return root
}

func newLoginCmd(a *app) *cobra.Command {
	var code, state string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Begin or complete the identity provider login flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			if code == "" {
				url, err := a.session.Login()
				if err != nil {
					return err
				}
				fmt.Println("Visit to log in:")
				fmt.Println(url)
				fmt.Println("Then run: storefront login --code <code> --state <state>")
				return nil
			}
			if err := a.session.CompleteLogin(cmd.Context(), code, state); err != nil {
				return err
			}
			if a.session.State() == auth.StateOnboarding {
				fmt.Println("Profile incomplete. Finish with: storefront register")
				return nil
			}
			fmt.Println("Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "authorization code from the redirect callback")
	cmd.Flags().StringVar(&state, "state", "", "state value from the redirect callback")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the local session and end the provider session",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := a.session.Logout()
			fmt.Println("Logged out. To end the provider session, visit:")
			fmt.Println(url)
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var reg model.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Complete the one-time profile registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validate.Struct(reg); err != nil {
				return err
			}
			if err := a.session.CompleteRegistration(cmd.Context(), reg); err != nil {
				return err
			}
			fmt.Println("Registration complete.")
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&reg.Street, "street", "", "street")
	cmd.Flags().StringVar(&reg.Number, "number", "", "street number / apartment")
	cmd.Flags().StringVar(&reg.PostalCode, "postal-code", "", "postal code")
	cmd.Flags().StringVar(&reg.City, "city", "", "city")
	cmd.Flags().StringVar(&reg.Province, "province", "", "province")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user := a.session.User(); user != nil {
				fmt.Printf("%s %s <%s> (%s) roles=%v\n",
					user.FirstName, user.LastName, user.Email, a.session.State(), user.Roles)
				if profile, err := a.provider.Profile(); err == nil {
					fmt.Printf("provider identity: %s <%s> sub=%s\n", profile.Name, profile.Email, profile.Subject)
				}
				return nil
			}
			fmt.Printf("anonymous client %s\n", a.session.AnonymousClientID())
			return nil
		},
	}
}

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse and administer products",
	}

	var page, size, categoryID int
	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.products.List(cmd.Context(), catalog.ProductQuery{
				Page: page, Size: size, CategoryID: categoryID, Search: search,
			})
			if err != nil {
				return err
			}
			for _, p := range result.Content {
				fmt.Printf("%4d  %-30s  %-15s  $%s  stock=%d\n",
					p.ID, p.Name, p.CategoryName, p.Price.StringFixed(2), p.Stock)
			}
			fmt.Printf("page %d/%d (%d products)\n", result.Number+1, result.TotalPages, result.TotalElements)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 0, "page number (0-based)")
	list.Flags().IntVar(&size, "size", 20, "page size")
	list.Flags().IntVar(&categoryID, "category", 0, "filter by category id")
	list.Flags().StringVar(&search, "search", "", "search term")

	var productID int
	show := &cobra.Command{
		Use:   "show",
		Short: "Show one product in full",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.products.Get(cmd.Context(), productID)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s / %s)\n%s\n", p.Name, p.Category.Name, p.Type.Name, p.Description)
			if p.CurrentPrice != nil {
				fmt.Printf("price: $%s\n", p.CurrentPrice.Amount.StringFixed(2))
			}
			fmt.Printf("stock: %d\n", p.Stock)
			return nil
		},
	}
	show.Flags().IntVar(&productID, "id", 0, "product id")
	_ = show.MarkFlagRequired("id")

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the product list to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			screen := admin.NewProductsScreen(a.products, terminalConfirmer{}, a.validate, a.log)
			if err := screen.Load(cmd.Context()); err != nil {
				return err
			}
			if err := admin.ExportProductsXLSX(out, screen.Products()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}
	export.Flags().StringVar(&out, "out", "productos.xlsx", "output file")

	create := newProductCreateCmd(a)

	var deleteID int
	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete a product (asks for confirmation)",
		RunE: func(cmd *cobra.Command, args []string) error {
			screen := admin.NewProductsScreen(a.products, terminalConfirmer{}, a.validate, a.log)
			if err := screen.Load(cmd.Context()); err != nil {
				return err
			}
			return screen.Delete(cmd.Context(), deleteID)
		},
	}
	del.Flags().IntVar(&deleteID, "id", 0, "product id")
	_ = del.MarkFlagRequired("id")

	cmd.AddCommand(list, show, create, export, del)
	return cmd
}

// newProductCreateCmd builds the product form as flags. Plant care values are
// checked against the backend's lookup catalogs before submitting, the way
// the admin form only offers the catalog values in its dropdowns.
func newProductCreateCmd(a *app) *cobra.Command {
	var (
		payload     model.ProductPayload
		price, cost string
		imagePath   string
		plant       model.PlantDetails
		tool        model.ToolDetails
		seed        model.SeedDetails
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if payload.Price, err = decimal.NewFromString(price); err != nil {
				return fmt.Errorf("invalid --price: %w", err)
			}
			if payload.Cost, err = decimal.NewFromString(cost); err != nil {
				return fmt.Errorf("invalid --cost: %w", err)
			}

			write := catalog.ProductWrite{Payload: payload}
			switch payload.TypeID {
			case model.ProductTypePlant:
				levels, err := a.lookups.LightLevels(cmd.Context())
				if err != nil {
					return err
				}
				if !hasLightLevel(levels, plant.LightLevel) {
					return fmt.Errorf("unknown light level %q", plant.LightLevel)
				}
				frequencies, err := a.lookups.WateringFrequencies(cmd.Context())
				if err != nil {
					return err
				}
				if !hasWateringFrequency(frequencies, plant.WateringFrequency) {
					return fmt.Errorf("unknown watering frequency %q", plant.WateringFrequency)
				}
				write.Details.Plant = &plant
			case model.ProductTypeTool:
				write.Details.Tool = &tool
			case model.ProductTypeSeed:
				write.Details.Seed = &seed
			}

			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return err
				}
				write.Image = &catalog.ImageUpload{Filename: filepath.Base(imagePath), Data: data}
			}

			screen := admin.NewProductsScreen(a.products, terminalConfirmer{}, a.validate, a.log)
			screen.OpenCreate()
			if err := screen.Submit(cmd.Context(), write); err != nil {
				return err
			}
			fmt.Println("created")
			return nil
		},
	}

	cmd.Flags().StringVar(&payload.Name, "name", "", "product name")
	cmd.Flags().StringVar(&payload.Description, "description", "", "product description")
	cmd.Flags().IntVar(&payload.Stock, "stock", 0, "initial stock")
	cmd.Flags().IntVar(&payload.ReorderPoint, "reorder-point", 0, "reorder point")
	cmd.Flags().IntVar(&payload.CategoryID, "category", 0, "category id")
	cmd.Flags().IntVar(&payload.TypeID, "type", model.ProductTypePlant, "product type id (1 plant, 2 tool, 3 seed)")
	cmd.Flags().StringVar(&price, "price", "0", "sale price")
	cmd.Flags().StringVar(&cost, "cost", "0", "purchase cost")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to the product image")
	cmd.Flags().StringVar(&plant.ScientificName, "scientific-name", "", "plant: scientific name")
	cmd.Flags().StringVar(&plant.LightLevel, "light-level", "", "plant: light level description")
	cmd.Flags().StringVar(&plant.WateringFrequency, "watering", "", "plant: watering frequency description")
	cmd.Flags().StringVar(&plant.Environment, "environment", "", "plant: environment")
	cmd.Flags().StringVar(&tool.Material, "material", "", "tool: main material")
	cmd.Flags().StringVar(&tool.Dimensions, "dimensions", "", "tool: dimensions")
	cmd.Flags().StringVar(&tool.RecommendedUse, "recommended-use", "", "tool: recommended use")
	cmd.Flags().StringVar(&seed.SpeciesVariety, "species", "", "seed: species / variety")
	cmd.Flags().StringVar(&seed.GerminationDays, "germination-days", "", "seed: germination time in days")
	cmd.Flags().StringVar(&seed.IdealSeason, "season", "", "seed: ideal sowing season")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func hasLightLevel(levels []model.LightLevel, description string) bool {
	for _, l := range levels {
		if l.Description == description {
			return true
		}
	}
	return false
}

func hasWateringFrequency(frequencies []model.WateringFrequency, description string) bool {
	for _, f := range frequencies {
		if f.Description == description {
			return true
		}
	}
	return false
}

func newCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Browse and administer categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := a.categories.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Printf("%4d  %-25s  %s\n", c.ID, c.Name, c.Description)
			}
			return nil
		},
	}

	var name, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			screen := admin.NewCategoriesScreen(a.categories, terminalConfirmer{}, a.validate, a.log)
			screen.OpenCreate()
			if err := screen.Submit(cmd.Context(), model.CategoryPayload{Name: name, Description: description}); err != nil {
				return err
			}
			fmt.Println("created")
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "category name")
	create.Flags().StringVar(&description, "description", "", "category description")
	_ = create.MarkFlagRequired("name")

	var deleteID int
	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete a category (asks for confirmation)",
		RunE: func(cmd *cobra.Command, args []string) error {
			screen := admin.NewCategoriesScreen(a.categories, terminalConfirmer{}, a.validate, a.log)
			if err := screen.Load(cmd.Context()); err != nil {
				return err
			}
			return screen.Delete(cmd.Context(), deleteID)
		},
	}
	del.Flags().IntVar(&deleteID, "id", 0, "category id")
	_ = del.MarkFlagRequired("id")

	cmd.AddCommand(list, create, del)
	return cmd
}

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and mutate the shopping cart",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cart.Refresh(cmd.Context()); err != nil {
				return err
			}
			for _, item := range a.cart.Items() {
				fmt.Printf("%4d  %-30s  x%d  $%s\n",
					item.ProductID, item.ProductName, item.Quantity, item.UnitPrice.StringFixed(2))
			}
			fmt.Printf("%d items, total $%s\n", a.cart.ItemCount(), a.cart.Total().StringFixed(2))
			return nil
		},
	}

	var productID, quantity int
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cart.AddItem(cmd.Context(), productID, quantity)
		},
	}
	add.Flags().IntVar(&productID, "product", 0, "product id")
	add.Flags().IntVar(&quantity, "quantity", 1, "quantity")
	_ = add.MarkFlagRequired("product")

	var setProductID, setQuantity int
	set := &cobra.Command{
		Use:   "set-quantity",
		Short: "Set the quantity of a cart line (0 removes it)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cart.UpdateQuantity(cmd.Context(), setProductID, setQuantity)
		},
	}
	set.Flags().IntVar(&setProductID, "product", 0, "product id")
	set.Flags().IntVar(&setQuantity, "quantity", 0, "new quantity")
	_ = set.MarkFlagRequired("product")

	var removeID int
	remove := &cobra.Command{
		Use:   "remove",
		Short: "Remove a product from the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cart.RemoveItem(cmd.Context(), removeID)
		},
	}
	remove.Flags().IntVar(&removeID, "product", 0, "product id")
	_ = remove.MarkFlagRequired("product")

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cart.Clear(cmd.Context())
		},
	}

	var method, notes string
	checkout := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order and obtain the payment preference",
		RunE: func(cmd *cobra.Command, args []string) error {
			pref, err := a.cart.Checkout(cmd.Context(), method, notes)
			if err != nil {
				return err
			}
			fmt.Printf("payment preference %s\n", pref.ID)
			if pref.InitPoint != "" {
				fmt.Printf("pay at: %s\n", pref.InitPoint)
			}
			return nil
		},
	}
	checkout.Flags().StringVar(&method, "method", "Mercado Pago", "payment method")
	checkout.Flags().StringVar(&notes, "notes", "Pedido realizado desde la web.", "customer notes")

	cmd.AddCommand(show, add, set, remove, clear, checkout)
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the admin dashboard metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			screen := admin.NewDashboardScreen(a.dashboard)
			if err := screen.Load(cmd.Context()); err != nil {
				return err
			}
			m := screen.Metrics()
			fmt.Printf("products: %d\nactive users: %d\norders: %d\n",
				m.TotalProducts, m.TotalActiveUsers, m.TotalOrders)
			for _, top := range m.TopSellers {
				fmt.Printf("  top: %s (%d sold)\n", top.ProductName, top.UnitsSold)
			}
			return nil
		},
	}
}
