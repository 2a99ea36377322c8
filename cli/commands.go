// Package cli provides the Cobra-based CLI for store-cli.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storefront/domain"
	"storefront/sales"
	"storefront/store"
)

var (
	rootCmd = &cobra.Command{
		Use:   "store-cli",
		Short: "A retail store management system",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// IMPORTANT: allow tests to inject store
			if storeBackend != nil {
				return nil
			}

			if cfg := viper.GetString("config"); cfg != "" {
				viper.SetConfigFile(cfg)
				if err := viper.ReadInConfig(); err != nil {
					return err
				}
			}

			lvlStr := strings.ToLower(viper.GetString("log-level"))
			lvl := slog.LevelInfo
			switch lvlStr {
			case "debug":
				lvl = slog.LevelDebug
			case "warn", "warning":
				lvl = slog.LevelWarn
			case "error":
				lvl = slog.LevelError
			}
			slog.SetDefault(slog.New(
				slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}),
			))

			var err error
			storeBackend, err = store.NewStore(
				viper.GetString("store"),
				viper.GetString("store-file"),
			)
			return err
		},
	}

	storeBackend domain.Store
)

// parseCart turns repeated --item id=qty flags into a cart map.
func parseCart(items []string) (map[string]int, error) {
	cart := make(map[string]int, len(items))
	for _, item := range items {
		id, qtyStr, ok := strings.Cut(item, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid item %q, expected id=qty", item)
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("invalid quantity in item %q", item)
		}
		cart[id] = qty
	}
	return cart, nil
}

func init() {
	// shell
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := bufio.NewReader(os.Stdin)
			for {
				fmt.Print("store> ")
				line, err := r.ReadString('\n')
				if err != nil {
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}
				rootCmd.SetArgs(strings.Fields(line))
				if err := rootCmd.Execute(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
				rootCmd.SetArgs(nil)
			}
		},
	}
	rootCmd.AddCommand(shellCmd)

	rootCmd.PersistentFlags().String("store", "memory", "store backend: memory|file")
	rootCmd.PersistentFlags().String("store-file", "data/store.json", "file store path")
	rootCmd.PersistentFlags().String("config", "", "config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level")

	viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("store-file", rootCmd.PersistentFlags().Lookup("store-file"))
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.SetEnvPrefix("STORE")
	viper.AutomaticEnv()

	// add-product
	var id, name, category, price, warranty, size string
	var total, stock int
	addCmd := &cobra.Command{
		Use:   "add-product",
		Short: "Register a product in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return errors.New("id required")
			}
			if name == "" {
				return errors.New("name required")
			}
			basePrice, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", price, err)
			}
			attrs := map[string]string{}
			if warranty != "" {
				attrs["warranty"] = warranty
			}
			if size != "" {
				attrs["size"] = size
			}
			p := domain.Product{
				ID:             id,
				Name:           name,
				Category:       domain.Category(category),
				BasePrice:      basePrice,
				TotalAvailable: total,
				CurrentStock:   stock,
				Attrs:          attrs,
			}
			start := time.Now()
			if err := storeBackend.Register(context.Background(), p); err != nil {
				slog.Error("register failed", "product_id", id, "error", err)
				return err
			}
			slog.Info("product registered", "product_id", id, "duration_ms", time.Since(start).Milliseconds())
			b, _ := json.MarshalIndent(p, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}
	addCmd.Flags().StringVar(&id, "id", "", "product id")
	addCmd.Flags().StringVar(&name, "name", "", "name")
	addCmd.Flags().StringVar(&category, "category", "", "category: Electronics|Clothing")
	addCmd.Flags().StringVar(&price, "price", "0", "base price")
	addCmd.Flags().IntVar(&total, "total", 0, "total available (capacity)")
	addCmd.Flags().IntVar(&stock, "stock", 0, "initial stock")
	addCmd.Flags().StringVar(&warranty, "warranty", "", "warranty (Electronics)")
	addCmd.Flags().StringVar(&size, "size", "", "size (Clothing)")
	rootCmd.AddCommand(addCmd)

	// restock
	var amount int
	restockCmd := &cobra.Command{
		Use:   "restock <id>",
		Short: "Restock a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if err := storeBackend.Restock(context.Background(), args[0], amount); err != nil {
				slog.Error("restock failed", "product_id", args[0], "error", err)
				return err
			}
			slog.Info("product restocked", "product_id", args[0], "amount", amount, "duration_ms", time.Since(start).Milliseconds())
			p, err := storeBackend.Lookup(context.Background(), args[0])
			if err != nil {
				return err
			}
			b, _ := json.MarshalIndent(p, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}
	restockCmd.Flags().IntVar(&amount, "amount", 0, "units to add")
	rootCmd.AddCommand(restockCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get product by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := storeBackend.Lookup(context.Background(), args[0])
			if err != nil {
				if domain.IsProductNotFoundError(err) {
					fmt.Fprintln(os.Stderr, err)
					return nil
				}
				return err
			}
			b, _ := json.MarshalIndent(p, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}
	rootCmd.AddCommand(getCmd)

	// list
	var lCategory, lSort, lOrder, lOutput string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := storeBackend.List(context.Background(), domain.ListFilter{
				Category: domain.Category(lCategory),
				SortBy:   lSort,
				Order:    lOrder,
			})
			if err != nil {
				return err
			}
			if lOutput == "json" {
				b, _ := json.MarshalIndent(out, "", "  ")
				fmt.Println(string(b))
				return nil
			}
			for _, p := range out {
				fmt.Printf("%s | %s | $%s | discount $%s | sold %d\n",
					p.ID, p.Details(), p.BasePrice.StringFixed(2), p.Discount().StringFixed(2), p.SalesCount)
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&lCategory, "category", "", "category")
	listCmd.Flags().StringVar(&lSort, "sort-by", "", "sort field: name|price|stock|sales")
	listCmd.Flags().StringVar(&lOrder, "order", "asc", "sort order")
	listCmd.Flags().StringVar(&lOutput, "output", "", "output format")
	rootCmd.AddCommand(listCmd)

	// sell
	var sContact, sName string
	var sItems []string
	sellCmd := &cobra.Command{
		Use:   "sell --contact <contact> --item id=qty [--item id=qty ...]",
		Short: "Process a sale transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sContact == "" {
				return errors.New("contact required")
			}
			if len(sItems) == 0 {
				return errors.New("at least one --item required")
			}
			cart, err := parseCart(sItems)
			if err != nil {
				return err
			}

			ctx := context.Background()
			if _, err := storeBackend.FindOrCreate(ctx, sName, sContact); err != nil {
				return err
			}

			processor := sales.NewProcessor(storeBackend, storeBackend, sales.NewLedger())
			start := time.Now()
			purchase, outcomes, err := processor.ProcessSale(ctx, sContact, cart)
			if err != nil {
				slog.Error("sale failed", "contact", sContact, "error", err)
				return err
			}

			for _, o := range outcomes {
				fmt.Printf("%s x%d: %s\n", o.ProductID, o.Quantity, o.Status)
			}
			if purchase == nil {
				slog.Warn("no purchasable items in cart", "contact", sContact)
				fmt.Println("no invoice produced")
				return nil
			}
			slog.Info(
				"sale processed",
				"invoice_id", purchase.InvoiceID,
				"contact", sContact,
				"lines", len(purchase.Items),
				"total_with_tax", purchase.TotalWithTax.StringFixed(2),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			b, _ := json.MarshalIndent(purchase, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}
	sellCmd.Flags().StringVar(&sContact, "contact", "", "customer contact")
	sellCmd.Flags().StringVar(&sName, "name", "", "customer name (used on first sale)")
	sellCmd.Flags().StringArrayVar(&sItems, "item", nil, "cart line as id=qty; repeatable")
	rootCmd.AddCommand(sellCmd)

	// history
	historyCmd := &cobra.Command{
		Use:   "history <contact>",
		Short: "Show a customer's purchase history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			purchases, err := storeBackend.History(context.Background(), args[0])
			if err != nil {
				if domain.IsCustomerNotFoundError(err) {
					fmt.Fprintln(os.Stderr, err)
					return nil
				}
				return err
			}
			b, _ := json.MarshalIndent(purchases, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}
	rootCmd.AddCommand(historyCmd)

	// report
	var topN int
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Best selling products",
		RunE: func(cmd *cobra.Command, args []string) error {
			report := sales.NewReport(storeBackend)
			out, err := report.TopSellers(context.Background(), topN)
			if err != nil {
				return err
			}
			for _, p := range out {
				fmt.Printf("%s - Sold: %d\n", p.Details(), p.SalesCount)
			}
			return nil
		},
	}
	reportCmd.Flags().IntVar(&topN, "top", 3, "number of products")
	rootCmd.AddCommand(reportCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
