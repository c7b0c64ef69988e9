package cmd

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brk3/habitcal/pkg/versioninfo"
	"github.com/spf13/cobra"
)

var versionServer string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `The "version" command displays the current version info for the client,
and for a running "habits serve" bridge when --server is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		version(cmd)
	},
}

func version(cmd *cobra.Command) {
	cmd.Printf("Client Version: %s (built %s)\n", versioninfo.Version, versioninfo.BuildDate)
	if versionServer == "" {
		return
	}

	resp, err := http.Get(strings.TrimRight(versionServer, "/") + "/version")
	if err != nil {
		cmd.Println("Error fetching server version:", err)
		return
	}
	defer resp.Body.Close()
	serverVersion := &versioninfo.VersionInfo{}
	if err := json.NewDecoder(resp.Body).Decode(serverVersion); err != nil {
		cmd.Println("Error decoding version response:", err)
		return
	}
	cmd.Printf("Server Version: %s\n", serverVersion.Version)
}

func init() {
	versionCmd.Flags().StringVar(&versionServer, "server", "", "base URL of a running bridge")
	rootCmd.AddCommand(versionCmd)
}
