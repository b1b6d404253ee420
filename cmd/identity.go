package cmd

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/dk9977/maskedminers/internal/identity"
	"github.com/spf13/cobra"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Draw and inspect masked browser personas",
	Long: "Draws personas from the user-agent corpus (or parses a given user-agent string)\n" +
		"and shows the parsed facts plus the header set each persona would send.",
	RunE: runIdentity,
}

func init() {
	identityCmd.Flags().Int("count", 1, "Number of personas to draw")
	identityCmd.Flags().String("ua", "", "Parse this user-agent string instead of drawing from the corpus")
	identityCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(identityCmd)
}

func runIdentity(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	ua, _ := cmd.Flags().GetString("ua")
	format, _ := cmd.Flags().GetString("format")

	rng := identity.NewRand()

	var personas []*identity.Persona
	if ua != "" {
		personas = []*identity.Persona{identity.FromUserAgent(ua, rng)}
	} else {
		for i := 0; i < count; i++ {
			p, err := identity.NewPersona(catalog, rng)
			if err != nil {
				return err
			}
			personas = append(personas, p)
		}
	}

	if format == "json" {
		type personaOut struct {
			*identity.Persona
			Headers http.Header `json:"headers"`
		}
		out := make([]personaOut, len(personas))
		for i, p := range personas {
			h := http.Header{}
			p.ApplyHeaders(h)
			out[i] = personaOut{p, h}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for i, p := range personas {
		printPersonaCard(i, p)
	}
	return nil
}
