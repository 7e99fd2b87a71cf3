// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/page-engine/internal/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect page templates",
}

var templatesShowCmd = &cobra.Command{
	Use:   "show [file.yaml]",
	Short: "Validate a page template and print its structure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tmpl, err := templates.Load(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s", tmpl.Name)
		if tmpl.Description != "" {
			fmt.Printf(": %s", tmpl.Description)
		}
		fmt.Println()
		for i, s := range tmpl.Sections {
			fmt.Printf("  %d. %s", i+1, s.Title)
			if s.Description != "" {
				fmt.Printf(": %s", s.Description)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	templatesCmd.AddCommand(templatesShowCmd)
	rootCmd.AddCommand(templatesCmd)
}
