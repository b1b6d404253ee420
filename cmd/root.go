package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dk9977/maskedminers/config"
	"github.com/dk9977/maskedminers/internal/collector"
	"github.com/dk9977/maskedminers/internal/httputil"
	"github.com/dk9977/maskedminers/internal/identity"
	"github.com/dk9977/maskedminers/internal/logging"
	"github.com/dk9977/maskedminers/internal/miner"
	"github.com/dk9977/maskedminers/internal/stealth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	cfg     *config.Config
	logger  *zap.Logger
	catalog *identity.Catalog
)

var rootCmd = &cobra.Command{
	Use:   "maskedminers",
	Short: "Masked Miners - web mining CLI & MCP server with browser-identity masking",
	Long: "A Go-based web miner that disguises its HTTP requests as ordinary desktop browsers.\n" +
		"Identities are drawn from a weighted corpus of real-world user-agent statistics and\n" +
		"expanded into internally consistent header sets, client hints included.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("corpus", "", "Path to the user-agent corpus file")
	rootCmd.PersistentFlags().String("delay-profile", "normal", "Delay profile: cautious, normal, aggressive")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt rules")
	rootCmd.PersistentFlags().String("proxy-file", "", "Path to proxy list file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("corpus"); v != "" {
		cfg.CorpusFile = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("delay-profile"); v != "" {
		cfg.DelayProfile = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("respect-robots"); !v {
		cfg.RespectRobots = false
	}
	if v, _ := rootCmd.PersistentFlags().GetString("proxy-file"); v != "" {
		cfg.ProxyFile = v
		cfg.ProxyMode = "custom"
	}
	if v, _ := rootCmd.PersistentFlags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}

	logger = logging.New(cfg.LogLevel)
	identity.SetLogger(logger)
	catalog = identity.NewCatalog(cfg.CorpusFile)
}

// newMaskedMiner draws a fresh persona from the catalog and builds a
// miner whose whole session presents that one identity.
func newMaskedMiner() (*miner.Miner, error) {
	persona, err := identity.NewPersona(catalog, identity.NewRand())
	if err != nil {
		return nil, fmt.Errorf("draw persona: %w", err)
	}

	baseTransport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}

	var proxyRotator *stealth.ProxyRotator
	if cfg.ProxyMode == "custom" && cfg.ProxyFile != "" {
		providers, err := stealth.LoadProxyFile(cfg.ProxyFile)
		if err != nil {
			return nil, err
		}
		proxyRotator = stealth.NewProxyRotator(providers)
	}

	robotsClient := &http.Client{Timeout: 10 * time.Second}
	robots := stealth.NewRobotsChecker(robotsClient, cfg.RespectRobots)

	transport := &miner.MaskedTransport{
		Base:        baseTransport,
		Persona:     persona,
		Robots:      robots,
		Proxy:       proxyRotator,
		Delay:       stealth.NewHumanDelay(stealth.DelayProfile(cfg.DelayProfile)),
		RateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
	}

	client := httputil.NewHTTPClient(transport)
	return miner.New(client, persona, miner.Options{
		Attempts:      cfg.Attempts,
		MaxConcurrent: cfg.MaxConcurrent,
		Limiter:       rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
	}), nil
}

// newCollector builds the corpus refresh job. It runs unmasked.
func newCollector(headless bool) *collector.Collector {
	return collector.New(httputil.NewHTTPClient(nil), catalog, logger, collector.Options{
		Headless: headless,
	})
}
