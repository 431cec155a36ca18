package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/FelipeCgrillo/liquidapp/internal/rut"
	"github.com/FelipeCgrillo/liquidapp/internal/wizard"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func clientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cliente <rut>",
		Short: "Look up a client by RUT",
		Long:  `Validate a Chilean RUT locally and fetch the matching client with its vehicles.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !rut.Validate(args[0]) {
				return fmt.Errorf("RUT inválido: %s", args[0])
			}

			backend := wizard.NewHTTPBackend(viper.GetString("api-url"), viper.GetDuration("timeout"))
			client, err := backend.FindClient(cmd.Context(), args[0])
			if err != nil {
				var apiErr *wizard.APIError
				if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
					return fmt.Errorf("no existe un cliente con RUT %s", args[0])
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", client.FullName, client.Rut)
			if client.PolicyNumber != nil {
				fmt.Fprintf(out, "Póliza: %s\n", *client.PolicyNumber)
			}
			for _, v := range client.Vehicles {
				line := fmt.Sprintf("  %s %s %s", strings.ToUpper(v.Plate), v.Make, v.Model)
				if v.Year != nil {
					line += fmt.Sprintf(" %d", *v.Year)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
