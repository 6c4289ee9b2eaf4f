// Kardex Extract runs batch reports against the store inventory database.
//
// USAGE:
//
//	kardex saida [--full] [--days N] [--upload]
//	kardex estoque [--upload]
//	kardex dump TABLE [--limit N] [--sample N]
//	kardex upload [--file PATH] [--sheet NAME]
//	kardex version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ginjaninja78/kardex-extract/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
