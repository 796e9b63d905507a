package main

import (
	"context"
	"fmt"
	"os"

	"github.com/possuite/backoffice/internal/cli"
)

// @title                       POS Back-Office API
// @version                     1.0
// @description                 Multi-tenant point-of-sale back office: stores, roles, staff, products and subscription plans.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
