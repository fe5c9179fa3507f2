package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	verrors "github.com/vango-dev/vloop/internal/errors"
)

func errorsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "errors [code]",
		Short: "List error codes or explain one",
		Long: `Without arguments, list every registered error code with its
category and message. With a code, print that error in the format
chosen by --error-format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				code := strings.ToUpper(args[0])
				if _, ok := verrors.GetTemplate(code); !ok {
					return verrors.New("E551").WithField("code", args[0])
				}
				fmt.Fprintln(out, formatError(verrors.New(code), c.errFormat))
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, code := range verrors.GetAllCodes() {
				tmpl, _ := verrors.GetTemplate(code)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", code, tmpl.Category, tmpl.Message)
			}
			return tw.Flush()
		},
	}
}
