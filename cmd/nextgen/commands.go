package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/internal/infra/gateway"
	"github.com/totegamma/nextgen-portal/internal/usecase"
)

var (
	searchQuery   usecase.SearchQuery
	searchLocal   bool
	searchFilters []string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the federation and print the dataset rows as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cl, conf, err := newCLIClient(cmd)
		if err != nil {
			return err
		}
		uc := usecase.NewSearchUsecase(gateway.NewCatalogGateway(cl), usecase.SearchOptions{
			Paginate:     conf.Search.Paginate,
			DefaultLimit: conf.Search.DefaultLimit,
			Language:     conf.Client.Language,
		})

		searchQuery.Filters = facetFilters(searchFilters)
		search := uc.Marketplace
		if searchLocal {
			search = uc.LocalSearch
		}
		result, err := search(cmd.Context(), searchQuery)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

// facetFilters turns --filter names into active boolean facets.
func facetFilters(names []string) map[string]any {
	filters := make(map[string]any, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			filters[name] = true
		}
	}
	return filters
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the search and catalog services",
	RunE: func(cmd *cobra.Command, args []string) error {
		cl, _, err := newCLIClient(cmd)
		if err != nil {
			return err
		}
		report, err := usecase.NewStatusUsecase(gateway.NewCatalogGateway(cl)).Check(cmd.Context())
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if !report.Healthy {
			return errors.New("services unhealthy")
		}
		return nil
	},
}

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Convert dataset IRIs to and from path tokens",
}

var idEncodeCmd = &cobra.Command{
	Use:   "encode [iri]",
	Short: "Encode a dataset IRI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printID(cmd, nextgen.EncodeID, args[0])
	},
}

var idDecodeCmd = &cobra.Command{
	Use:   "decode [token]",
	Short: "Decode a path token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printID(cmd, nextgen.DecodeID, args[0])
	},
}

var idConvertCmd = &cobra.Command{
	Use:   "convert [iri-or-token]",
	Short: "Encode an IRI or decode a token, whichever the input is",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printID(cmd, nextgen.ConvertID, args[0])
	},
}

func printID(cmd *cobra.Command, convert func(string) (string, error), input string) error {
	output, err := convert(input)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
	return err
}

func init() {
	flags := searchCmd.Flags()
	flags.StringVar(&searchQuery.Name, "name", "", "match dataset titles")
	flags.StringVar(&searchQuery.Description, "description", "", "match dataset descriptions")
	flags.StringVar(&searchQuery.Biobank, "biobank", "", "match the publishing biobank")
	flags.StringVar(&searchQuery.All, "all", "", "match any text field")
	flags.IntVar(&searchQuery.Page, "page", 1, "page number")
	flags.IntVar(&searchQuery.Limit, "limit", 0, "rows per page")
	flags.StringVar(&searchQuery.Language, "lang", "", "preferred literal language")
	flags.BoolVar(&searchLocal, "local", false, "search only the local catalog")
	flags.StringArrayVar(&searchFilters, "filter", nil, "enable a facet, e.g. diabetes, isShared or distribution_csv (repeatable)")

	idCmd.AddCommand(idEncodeCmd, idDecodeCmd, idConvertCmd)
}
