package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔╦╗┬┌─┐┬─┐┌─┐╔═╗╔═╗
  ║║║││  ├┬┘│ │║╣ ╚═╗
  ╩ ╩┴└─┘┴└─└─┘╚═╝╚═╝
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "microes",
		Short: "MicroES editor tooling",
		Long: `MicroES editor tooling.

Serve a project to the embedded runtime with live reload:

  • Local preview server with embedded engine and SDK assets
  • Browser refresh on file change via SSE or WebSocket
  • Optional toolchain step before each reload`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		previewCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the MicroES ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
