package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/pricing"
)

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "print display totals for a cart file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "cart lines as a JSON array", Required: true},
			&cli.StringFlag{Name: "buy-now", Usage: "a single buy-now line as JSON"},
		},
		Action: quote,
	}
}

func quote(c *cli.Context) error {
	var cart []entity.CartLine
	if err := readJSON(c.String("file"), &cart); err != nil {
		return err
	}
	var buyNow *entity.CartLine
	if path := c.String("buy-now"); path != "" {
		buyNow = &entity.CartLine{}
		if err := readJSON(path, buyNow); err != nil {
			return err
		}
	}

	snapshot := pricing.ResolveCheckoutItems(cart, buyNow)
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(pricing.Calculate(snapshot))
}

func readJSON(path string, dst any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
