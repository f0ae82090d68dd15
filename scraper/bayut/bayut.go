package bayut

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"

	"gulf-property-analyzer/config"
	"gulf-property-analyzer/models"
	"gulf-property-analyzer/utils"
)

const source = "bayut"

// portal maps a market key to the portal host and the city slug used in search URLs.
type portal struct {
	host string
	city string
}

var portals = map[string]portal{
	"dubai":     {host: "https://www.bayut.com", city: "dubai"},
	"abu_dhabi": {host: "https://www.bayut.com", city: "abu-dhabi"},
	"riyadh":    {host: "https://www.bayut.sa/en", city: "riyadh"},
	"jeddah":    {host: "https://www.bayut.sa/en", city: "jeddah"},
	"dammam":    {host: "https://www.bayut.sa/en", city: "dammam"},
}

// Supported reports whether the scraper knows a portal for market.
func Supported(market string) bool {
	_, ok := portals[market]
	return ok
}

// searchURL returns the for-sale results URL for a market and 1-based page.
func searchURL(market string, page int) (string, error) {
	p, ok := portals[market]
	if !ok {
		return "", eris.Errorf("bayut: no portal for market %q", market)
	}
	u := fmt.Sprintf("%s/for-sale/property/%s/", p.host, p.city)
	if page > 1 {
		u += fmt.Sprintf("?page=%d", page)
	}
	return u, nil
}

// card is one search result as extracted in the page.
type card struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Size     string `json:"size"`
	Beds     string `json:"beds"`
	Baths    string `json:"baths"`
	Location string `json:"location"`
	Type     string `json:"type"`
	URL      string `json:"url"`
}

func (c card) incomplete() bool {
	return c.Size == "" || c.Type == "" || c.Location == ""
}

// Scraper collects for-sale listings from a Bayut portal.
type Scraper struct {
	cfg     config.ScrapeConfig
	logger  *utils.Logger
	pool    *utils.WorkerPool
	visited *utils.KeySet
	retry   *utils.RetryConfig
	now     func() time.Time

	mu       sync.Mutex
	listings []*models.RawListing
}

// New creates a ready-to-use Scraper.
func New(cfg config.ScrapeConfig, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		pool:    utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		visited: utils.NewKeySet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		now:      time.Now,
		listings: make([]*models.RawListing, 0),
	}
}

// Scrape walks the configured number of result pages and returns the raw listings.
// A failing page ends pagination; listings gathered so far are still returned.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.RawListing, error) {
	if !Supported(s.cfg.Market) {
		return nil, eris.Errorf("bayut: no portal for market %q", s.cfg.Market)
	}
	s.logger.Info("[bayut] Starting scrape of %s: %d pages, %d listings/page",
		s.cfg.Market, s.cfg.Pages, s.cfg.ListingsPerPage)

	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[bayut] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// silence chromedp's own logging
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))
	defer cancelBrowser()

	for page := 1; page <= s.cfg.Pages; page++ {
		if err := ctx.Err(); err != nil {
			return s.listings, eris.Wrap(err, "bayut: scrape")
		}
		pageURL, _ := searchURL(s.cfg.Market, page)
		s.logger.Info("[bayut] Scraping page %d: %s", page, pageURL)

		cards, err := s.scrapePage(browserCtx, pageURL, page)
		if err != nil {
			s.logger.Error("[bayut] Page %d failed: %v", page, err)
			break
		}
		if len(cards) == 0 {
			s.logger.Warn("[bayut] Page %d returned 0 listings, stopping", page)
			break
		}

		s.enrichCards(ctx, browserCtx, cards)
		pageListings := s.toRawListings(cards)

		s.mu.Lock()
		s.listings = append(s.listings, pageListings...)
		total := len(s.listings)
		s.mu.Unlock()

		s.logger.Info("[bayut] Page %d done, collected %d listings so far", page, total)

		if page < s.cfg.Pages {
			select {
			case <-ctx.Done():
			case <-time.After(time.Duration(s.cfg.RateLimitMs) * time.Millisecond):
			}
		}
	}

	s.logger.Info("[bayut] Scrape complete, total raw listings: %d", len(s.listings))
	return s.listings, nil
}

// toRawListings converts page cards, skipping cards without a URL and URLs already seen.
func (s *Scraper) toRawListings(cards []*card) []*models.RawListing {
	out := make([]*models.RawListing, 0, len(cards))
	for _, c := range cards {
		if c.URL == "" {
			continue
		}
		if !s.visited.Add(c.URL) {
			s.logger.Debug("[bayut] Skipping duplicate: %s", c.URL)
			continue
		}
		out = append(out, &models.RawListing{
			Title:     c.Title,
			RawPrice:  c.Price,
			RawSize:   c.Size,
			RawBeds:   c.Beds,
			RawBaths:  c.Baths,
			Location:  c.Location,
			RawType:   c.Type,
			URL:       c.URL,
			Market:    s.cfg.Market,
			ScrapedAt: s.now(),
			Source:    source,
		})
	}
	return out
}

const cardsScript = `
(function(limit) {
	var results = [];
	var seen = {};
	var cards = document.querySelectorAll('li[role="article"], article');
	var text = function(root, sel) {
		var el = root.querySelector(sel);
		return el ? el.innerText.trim() : '';
	};
	for (var i = 0; i < cards.length && results.length < limit; i++) {
		var card = cards[i];
		var link = card.querySelector('a[href*="/property/details-"]') || card.querySelector('a[href]');
		var url = link ? link.href : '';
		if (!url || seen[url]) continue;
		seen[url] = true;
		var price = text(card, '[aria-label="Price"]');
		var currency = text(card, '[aria-label="Currency"]');
		results.push({
			title:    text(card, 'h2') || (link ? (link.getAttribute('title') || '') : ''),
			price:    (currency ? currency + ' ' : '') + price,
			size:     text(card, '[aria-label="Area"]'),
			beds:     text(card, '[aria-label="Beds"]'),
			baths:    text(card, '[aria-label="Baths"]'),
			location: text(card, '[aria-label="Location"]'),
			type:     text(card, '[aria-label="Type"]'),
			url:      url
		});
	}
	return results;
})(%d)
`

// scrapePage loads a results page and extracts listing cards.
func (s *Scraper) scrapePage(browserCtx context.Context, pageURL string, pageNum int) ([]*card, error) {
	var cards []*card

	err := s.retry.DoContext(browserCtx, fmt.Sprintf("scrape-page-%d", pageNum), func(context.Context) error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		var found []*card
		err := chromedp.Run(ctx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(5*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(fmt.Sprintf(cardsScript, s.cfg.ListingsPerPage), &found),
		)
		if err != nil {
			return eris.Wrap(err, "chromedp page scrape")
		}

		s.logger.Debug("[bayut] Page %d: found %d cards", pageNum, len(found))
		cards = found
		return nil
	})

	return cards, err
}

// enrichCards fills missing size, type and location from detail pages.
func (s *Scraper) enrichCards(ctx, browserCtx context.Context, cards []*card) {
	for _, c := range cards {
		if c.URL == "" || !c.incomplete() {
			continue
		}
		s.pool.SubmitContext(ctx, func() {
			detail, err := s.scrapeDetailPage(browserCtx, c.URL)
			if err != nil {
				s.logger.Warn("[bayut] Detail page failed for %s: %v", c.URL, err)
				return
			}
			mergeCard(c, detail)
			s.logger.Debug("[bayut] Enriched: %s", c.Title)
		})
	}
	s.pool.Wait()
}

// mergeCard copies non-empty detail fields into empty card fields.
func mergeCard(dst, src *card) {
	fill := func(d *string, v string) {
		if strings.TrimSpace(*d) == "" && strings.TrimSpace(v) != "" {
			*d = strings.TrimSpace(v)
		}
	}
	fill(&dst.Title, src.Title)
	fill(&dst.Price, src.Price)
	fill(&dst.Size, src.Size)
	fill(&dst.Beds, src.Beds)
	fill(&dst.Baths, src.Baths)
	fill(&dst.Location, src.Location)
	fill(&dst.Type, src.Type)
}

const detailScript = `
(function() {
	var text = function(sel) {
		var el = document.querySelector(sel);
		return el ? el.innerText.trim() : '';
	};
	return {
		title:    text('h1'),
		price:    text('[aria-label="Price"]'),
		size:     text('[aria-label="Area"]'),
		beds:     text('[aria-label="Beds"]'),
		baths:    text('[aria-label="Baths"]'),
		location: text('[aria-label="Property header"]') || text('[aria-label="Location"]'),
		type:     text('[aria-label="Type"]')
	};
})()
`

// scrapeDetailPage visits a listing page and extracts its key facts.
func (s *Scraper) scrapeDetailPage(browserCtx context.Context, url string) (*card, error) {
	detail := &card{URL: url}

	err := s.retry.DoContext(browserCtx, "detail-page", func(context.Context) error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		var found card
		err := chromedp.Run(ctx,
			chromedp.Navigate(url),
			chromedp.Sleep(4*time.Second),
			chromedp.Evaluate(detailScript, &found),
		)
		if err != nil {
			return eris.Wrap(err, "chromedp detail extract")
		}
		found.URL = url
		*detail = found
		return nil
	})

	return detail, err
}

// findChromeBinary locates a Chrome/Chromium binary, preferring the configured one.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
