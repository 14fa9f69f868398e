package clipper

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"meal-planner/internal/llm"
	"meal-planner/internal/mealplan"

	"github.com/PuerkitoBio/goquery"
)

//go:embed clip_prompt.md
var clipPrompt string

// maxContentChars caps the page text sent to the model.
const maxContentChars = 20000

var ErrNoRecipe = errors.New("no recipe found on page")

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	textGen    llm.TextGenerator
	httpClient *http.Client
}

// ClipResult is a recipe extracted from a web page.
type ClipResult struct {
	Recipe    mealplan.Recipe
	SourceURL string
	Meta      llm.AgentMeta
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		textGen:    textGen,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the URL and extracts a structured recipe using AI.
func (c *Clipper) ClipURL(ctx context.Context, url string) (ClipResult, error) {
	// 1. Fetch and Clean HTML
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return ClipResult{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	// 2. Extract Data via the LLM
	prompt, err := buildClipPrompt(url, content)
	if err != nil {
		return ClipResult{}, err
	}

	start := time.Now()
	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return ClipResult{}, fmt.Errorf("ai extraction failed: %w", err)
	}
	meta := llm.AgentMeta{AgentName: "Clipper", Usage: resp.Usage, Latency: time.Since(start)}

	var recipe mealplan.Recipe
	if err := json.Unmarshal([]byte(resp.Content), &recipe); err != nil {
		return ClipResult{Meta: meta}, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}

	recipe.Name = strings.TrimSpace(recipe.Name)
	if recipe.Name == "" || len(recipe.Ingredients) == 0 {
		return ClipResult{Meta: meta}, fmt.Errorf("%w: %s", ErrNoRecipe, url)
	}

	return ClipResult{Recipe: recipe, SourceURL: url, Meta: meta}, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "meal-planner/1.0 (+recipe clipper)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, noscript, svg, form, ads, .ads, #ads, .comments, #comments").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if len(text) > maxContentChars {
		text = text[:maxContentChars]
	}
	return text, nil
}

func buildClipPrompt(url, content string) (string, error) {
	tmpl, err := template.New("clip").Parse(clipPrompt)
	if err != nil {
		return "", fmt.Errorf("failed to parse clip prompt: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ URL, Content string }{url, content}); err != nil {
		return "", fmt.Errorf("failed to render clip prompt: %w", err)
	}
	return buf.String(), nil
}
