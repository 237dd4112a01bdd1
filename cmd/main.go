package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docuquery/docuquery/cmd/service"
)

func main() {
	godotenv.Load()

	root := &cobra.Command{
		Use:   "docuquery",
		Short: "docuquery",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("empty command")
		},
	}

	root.AddCommand(service.NewCommand(), service.NewMigrateCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
