// Package pagescan finds recipe ids in recipe web app URLs and pages.
package pagescan

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
)

// DefaultRecipeHosts are the hosts recipe pages may be fetched from.
var DefaultRecipeHosts = []string{"web.brewfather.app"}

var recipePathRe = regexp.MustCompile(`/tabs/recipes/recipe/([^/?#]+)`)

// RecipeIDFromURL extracts the id from a .../tabs/recipes/recipe/{id} link.
// Relative links and hash-routed URLs are accepted.
func RecipeIDFromURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	candidates := []string{raw}
	if u, err := url.Parse(raw); err == nil {
		candidates = []string{u.Path, u.Fragment}
	}
	for _, c := range candidates {
		if m := recipePathRe.FindStringSubmatch(c); m != nil {
			id, err := url.PathUnescape(m[1])
			if err != nil {
				id = m[1]
			}
			return id, id != ""
		}
	}
	return "", false
}

// CheckPageURL accepts only https URLs on the default port of one of hosts.
func CheckPageURL(raw string, hosts []string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: page url: %v", domain.ErrInvalidInput, err)
	}
	if u.Scheme != "https" || u.User != nil || (u.Port() != "" && u.Port() != "443") {
		return nil, fmt.Errorf("%w: page url must be https on a recipe host", domain.ErrInvalidInput)
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range hosts {
		if host == strings.ToLower(strings.TrimSpace(h)) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: host %q is not a recipe host", domain.ErrInvalidInput, host)
}

// ResolveRecipeID accepts either a bare recipe id or a recipe URL.
func ResolveRecipeID(input string) string {
	if id, ok := RecipeIDFromURL(input); ok {
		return id
	}
	return strings.TrimSpace(input)
}

// RecipeIDsFromHTML returns the recipe ids linked from every anchor in the
// document, deduplicated, in document order.
func RecipeIDsFromHTML(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	ids := []string{}
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		id, ok := RecipeIDFromURL(href)
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	})
	return ids, nil
}
