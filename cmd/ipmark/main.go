// Command ipmark scans text for IPv4 and IPv6 addresses and decorates them
// in place with metadata from local MMDB databases, sed-style.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"
)

const defaultTemplate = "<{ip}|AS{asnnum}_{asnorg}|{country_iso}|{city}>"

func main() {
	cmd := newRootCommand(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		// A consumer closing the pipe early (head, less) is a normal way
		// to stop, not a failure.
		if errors.Is(err, syscall.EPIPE) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	r := &runner{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "ipmark [flags] [file ...]",
		Short: "Decorate IP addresses in text with GeoIP metadata",
		Long: `ipmark scans its input for IPv4 and IPv6 addresses and rewrites each
match in place with a templated decoration resolved from local MMDB
databases. With no files, or with "-", it reads standard input.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.loadConfigFile(cmd.Flags()); err != nil {
				return err
			}
			if err := r.run(args); err != nil {
				if !errors.Is(err, syscall.EPIPE) {
					fmt.Fprintf(stderr, "ipmark: %v\n", err)
				}
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&r.opts.onlyMatching, "only-matching", "o", false,
		"print only the decorated matches, one per line")
	flags.StringVarP(&r.opts.colorMode, "color", "C", "auto",
		"colorize decorations (auto|always|never)")
	flags.StringVarP(&r.opts.template, "template", "t", defaultTemplate,
		"decoration template; see --list-templates for fields")
	flags.BoolVar(&r.opts.tagLines, "tag", false,
		"emit one JSON record per line with matches instead of rewriting")
	flags.BoolVar(&r.opts.tagFiles, "tag-files", false,
		"emit one JSON record per file with matches instead of rewriting")
	flags.BoolVar(&r.opts.all, "all", false,
		"match every address category, overriding the --no-* filters")
	flags.BoolVar(&r.opts.noPrivate, "no-private", false,
		"skip private addresses (RFC 1918, fc00::/7)")
	flags.BoolVar(&r.opts.noLoopback, "no-loopback", false,
		"skip loopback addresses (127.0.0.0/8, ::1)")
	flags.BoolVar(&r.opts.noBroadcast, "no-broadcast", false,
		"skip broadcast and link-local addresses")
	flags.BoolVar(&r.opts.onlyRoutable, "only-routable", false,
		"decorate only addresses with an ASN entry; others pass through")
	flags.StringVar(&r.opts.provider, "provider", "maxmind",
		"metadata provider to use")
	flags.StringVarP(&r.opts.includeDir, "include", "I", "",
		"database directory (default: $IPMARK_MMDB_DIR, then standard GeoIP paths)")
	flags.BoolVar(&r.opts.listProviders, "list-providers", false,
		"list registered providers and their database status")
	flags.BoolVarP(&r.opts.listTemplates, "list-templates", "L", false,
		"list the template fields the active provider resolves")
	flags.StringVar(&r.opts.configPath, "config", "",
		"TOML config file; flags take precedence over its values")
	flags.BoolVar(&r.opts.cacheSnapshot, "cache-snapshot", false,
		"persist the decoration cache between runs")

	return cmd
}
