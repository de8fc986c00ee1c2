package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ersonp/kinship/internal/infrastructure/httpapi"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long:  "Serves the persons, relationships and family tree API for the selected tree until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gin.SetMode(gin.ReleaseMode)

			return withDeps(ctx, func(d *Deps) error {
				serverCfg := d.Config.Server
				if addr != "" {
					serverCfg.Addr = addr
				}

				srv, err := httpapi.NewServer(serverCfg, httpapi.Handlers{
					Persons:       d.Persons,
					Relationships: d.Relationships,
					FamilyTree:    d.FamilyTree,
				}, d.Logger.With("tree", d.TreeName))
				if err != nil {
					return fmt.Errorf("creating server: %w", err)
				}
				return srv.Run(ctx)
			})
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides server.addr)")

	return cmd
}
