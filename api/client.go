// Package api wraps the public HTTP APIs the fun commands pull from.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Endpoints are the upstream URLs. Tests point them at httptest servers.
type Endpoints struct {
	Kanye      string
	Fact       string
	Dog        string
	Cat        string
	Reddit     string
	RandomUser string
	Ejected    string
}

// DefaultEndpoints are the production URLs.
var DefaultEndpoints = Endpoints{
	Kanye:      "https://api.kanye.rest/",
	Fact:       "https://uselessfacts.jsph.pl/random.json?language=en",
	Dog:        "https://some-random-api.com/img/dog",
	Cat:        "https://some-random-api.com/img/cat",
	Reddit:     "https://www.reddit.com",
	RandomUser: "https://randomuser.me/api/?nat=us,dk,fr,gb,au,ca",
	Ejected:    "https://vacefron.nl/api/ejected",
}

// StatusError is returned when an upstream answers with a non-200 status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api returned status %d", e.Code)
}

// ErrSubredditNotFound is returned when reddit has no random post to give.
var ErrSubredditNotFound = errors.New("subreddit not found")

// ErrBadColour is returned for a crewmate colour the ejected image does not know.
var ErrBadColour = errors.New("unknown crewmate colour")

// EjectColours are the crewmate colours the ejected image accepts.
var EjectColours = []string{
	"darkgreen", "purple", "orange", "yellow", "random", "black", "brown",
	"white", "blue", "cyan", "lime", "pink", "red",
}

// ValidColour reports whether colour is one of EjectColours, ignoring case.
func ValidColour(colour string) bool {
	return slices.Contains(EjectColours, strings.ToLower(strings.TrimSpace(colour)))
}

// maxImageSize bounds a downloaded image.
const maxImageSize = 8 << 20

// Client fetches from the fun APIs.
type Client struct {
	http      *http.Client
	userAgent string
	endpoints Endpoints
}

// NewClient builds a Client with the given request timeout.
func NewClient(timeout time.Duration, userAgent string, endpoints Endpoints) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		endpoints: endpoints,
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Host, err)
	}
	return nil
}

// KanyeQuote returns a random Kanye West quote.
func (c *Client) KanyeQuote(ctx context.Context) (string, error) {
	var body struct {
		Quote string `json:"quote"`
	}
	if err := c.getJSON(ctx, c.endpoints.Kanye, &body); err != nil {
		return "", err
	}
	return body.Quote, nil
}

// RandomFact returns a random useless fact.
func (c *Client) RandomFact(ctx context.Context) (string, error) {
	var body struct {
		Text string `json:"text"`
	}
	if err := c.getJSON(ctx, c.endpoints.Fact, &body); err != nil {
		return "", err
	}
	return body.Text, nil
}

// Floof returns the URL of a random cat or dog picture.
func (c *Client) Floof(ctx context.Context) (string, error) {
	endpoint := c.endpoints.Dog
	if rand.IntN(2) == 1 {
		endpoint = c.endpoints.Cat
	}

	var body struct {
		Link string `json:"link"`
	}
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return "", err
	}
	return body.Link, nil
}

// RandomFirstName returns a random first name.
func (c *Client) RandomFirstName(ctx context.Context) (string, error) {
	var body struct {
		Results []struct {
			Name struct {
				First string `json:"first"`
			} `json:"name"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, c.endpoints.RandomUser, &body); err != nil {
		return "", err
	}
	if len(body.Results) == 0 || body.Results[0].Name.First == "" {
		return "", errors.New("randomuser returned no names")
	}
	return body.Results[0].Name.First, nil
}

// Submission is a reddit post.
type Submission struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Ups         int     `json:"ups"`
	Downs       int     `json:"downs"`
	Score       int     `json:"score"`
	Over18      bool    `json:"over_18"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Subscribers int     `json:"subreddit_subscribers"`
	CreatedUTC  float64 `json:"created_utc"`
}

// Link is the post's reddit URL.
func (s Submission) Link() string {
	return "https://www.reddit.com" + s.Permalink
}

// CreatedAt is the post time.
func (s Submission) CreatedAt() time.Time {
	return time.Unix(int64(s.CreatedUTC), 0).UTC()
}

type listing struct {
	Data struct {
		Children []struct {
			Data Submission `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RandomSubmission returns a random post from subreddit.
func (c *Client) RandomSubmission(ctx context.Context, subreddit string) (Submission, error) {
	subreddit = strings.TrimPrefix(strings.TrimSpace(subreddit), "r/")
	if subreddit == "" {
		return Submission{}, ErrSubredditNotFound
	}
	endpoint := strings.TrimRight(c.endpoints.Reddit, "/") + "/r/" + url.PathEscape(subreddit) + "/random.json"

	// Reddit answers with a single listing or an array of listings
	// depending on the subreddit.
	var raw json.RawMessage
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		var status *StatusError
		if errors.As(err, &status) {
			return Submission{}, ErrSubredditNotFound
		}
		return Submission{}, err
	}

	var listings []listing
	if err := json.Unmarshal(raw, &listings); err != nil {
		var single listing
		if err := json.Unmarshal(raw, &single); err != nil {
			return Submission{}, ErrSubredditNotFound
		}
		listings = []listing{single}
	}

	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return Submission{}, ErrSubredditNotFound
	}
	return listings[0].Data.Children[0].Data, nil
}

// Ejected renders the "name was ejected" crewmate image and returns it as PNG.
func (c *Client) Ejected(ctx context.Context, name, colour string, impostor bool) ([]byte, error) {
	colour = strings.ToLower(strings.TrimSpace(colour))
	if !ValidColour(colour) {
		return nil, ErrBadColour
	}

	q := url.Values{}
	q.Set("name", name)
	q.Set("impostor", strconv.FormatBool(impostor))
	q.Set("crewmate", colour)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.Ejected+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "image/png")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrBadColour
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	image, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read image from %s: %w", req.URL.Host, err)
	}
	return image, nil
}
