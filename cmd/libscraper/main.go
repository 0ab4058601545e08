package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tjodalv/libscraper/internal/config"
	"github.com/tjodalv/libscraper/pkg/scraper"
)

var jobFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "libscraper",
		Short: "libscraper — configurable web-scraping toolkit",
		Long: `libscraper crawls seed URLs, discovers pagination and item links via
CSS selector rules, extracts structured records, and persists them as
JSON or CSV.`,
	}

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// job is the declarative selector-rule skin over the callback API.
type job struct {
	Seeds              []jobSeed         `mapstructure:"seeds"`
	PaginationSelector string            `mapstructure:"pagination_selector"`
	ItemsSelector      string            `mapstructure:"items_selector"`
	Fields             map[string]string `mapstructure:"fields"`
}

type jobSeed struct {
	URL    string         `mapstructure:"url"`
	Static map[string]any `mapstructure:"static"`
}

func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run a crawl described by a job file",
		Long: `Run a crawl described by a YAML job file. The file holds both the
scraper configuration (format, throttling, directories) and the job
itself: seed URLs, a pagination link selector, an item link selector,
and a field-name to CSS-selector mapping.`,
		RunE: runCrawl,
	}

	cmd.Flags().StringVarP(&jobFile, "job", "j", "", "job file path (required)")
	cmd.MarkFlagRequired("job")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("libscraper", config.Version)
		},
	}
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(jobFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	j, err := loadJob(jobFile)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if len(j.Seeds) == 0 {
		return fmt.Errorf("job has no seeds")
	}
	if len(j.Fields) == 0 {
		return fmt.Errorf("job has no fields to extract")
	}
	for _, seed := range j.Seeds {
		if err := config.ValidateURL(seed.URL); err != nil {
			return fmt.Errorf("seed %q: %w", seed.URL, err)
		}
	}

	s, err := scraper.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	if j.PaginationSelector != "" {
		s.OnPagination(selectHrefs(j.PaginationSelector))
	}
	if j.ItemsSelector != "" {
		s.OnItems(selectHrefs(j.ItemsSelector))
	}
	s.OnItemData(extractFields(j.Fields))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	seeds := make([]scraper.Seed, len(j.Seeds))
	for i, seed := range j.Seeds {
		seeds[i] = scraper.NewSeedWithData(seed.URL, seed.Static)
	}

	results, err := s.Scrape(ctx, seeds...)
	if err != nil {
		return err
	}

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", res.Seed, res.Err)
			continue
		}
		if res.SavedTo == "" {
			fmt.Printf("%s: %d records, nothing saved\n", res.Seed, res.Records)
			continue
		}
		fmt.Printf("%s: %d records -> %s\n", res.Seed, res.Records, res.SavedTo)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d seeds failed", failed, len(results))
	}
	return nil
}

// loadJob reads the job portion of the job file.
func loadJob(path string) (*job, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	j := &job{}
	if err := v.Unmarshal(j); err != nil {
		return nil, err
	}
	return j, nil
}

// selectHrefs builds a link-finder callback collecting href attributes
// of nodes matching the selector.
func selectHrefs(selector string) func(p *scraper.Page, seedURL string) []string {
	return func(p *scraper.Page, seedURL string) []string {
		var urls []string
		p.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				return
			}
			href = strings.TrimSpace(href)
			if href == "" || strings.HasPrefix(href, "#") {
				return
			}
			urls = append(urls, href)
		})
		return urls
	}
}

// extractFields builds an extractor producing one record per page from a
// field-name to CSS-selector mapping.
func extractFields(fields map[string]string) scraper.ExtractFunc {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(ctx context.Context, p *scraper.Page, dl *scraper.Downloader, url string, follow scraper.FollowFunc, extra map[string]any) (scraper.ExtractResult, error) {
		r := scraper.NewRecord()
		r.Set("url", url)
		for _, name := range names {
			r.Set(name, p.Text(fields[name]))
		}
		return scraper.One(r), nil
	}
}
