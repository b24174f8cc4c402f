package feeds

import (
	"context"
	"sync"

	"Regatta/internal/core/posts"
)

// Query selects what a Composer streams. Changing any field starts a new stream.
type Query struct {
	CommunityIDs []string
	VenueID      string
	ViewerID     string
	Sort         string
	Timeframe    string
	PostType     string
	Limit        int
}

func (q Query) isEmpty() bool {
	return q.VenueID == "" && len(q.CommunityIDs) == 0
}

// Page is what one LoadNext delivered: only posts not seen on earlier pages
type Page struct {
	Cursor      *string           `json:"cursor,omitempty"`
	Posts       []*posts.FeedPost `json:"posts"`
	HasNextPage bool              `json:"hasNextPage"`
}

// Composer turns a query into an incrementally loaded, deduplicated post stream.
//
// Pages are appended in arrival order and never refetched. A failed fetch keeps
// what was already loaded and the next LoadNext retries the same cursor.
// SetQuery and Close bump a generation counter so a fetch started under an old
// query is cancelled and its result discarded instead of merged.
type Composer struct {
	fetcher PageFetcher

	mu         sync.Mutex
	query      Query
	generation uint64
	posts      []*posts.FeedPost
	seen       map[string]struct{}
	cursor     *string
	exhausted  bool
	loading    bool
	closed     bool
	lastErr    error
	cancel     context.CancelFunc
}

// NewComposer creates a composer streaming q through fetcher
func NewComposer(fetcher PageFetcher, q Query) *Composer {
	return &Composer{
		fetcher: fetcher,
		query:   q,
		seen:    make(map[string]struct{}),
	}
}

// LoadNext fetches the next page and appends its unseen posts.
// An exhausted stream returns an empty page with HasNextPage false and no fetch.
func (c *Composer) LoadNext(ctx context.Context) (*Page, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrComposerClosed
	}
	if c.loading {
		c.mu.Unlock()
		return nil, ErrFetchInProgress
	}
	if c.query.isEmpty() {
		c.exhausted = true
	}
	if c.exhausted {
		c.mu.Unlock()
		return &Page{Posts: []*posts.FeedPost{}}, nil
	}

	generation := c.generation
	req := FeedRequest{
		Cursor:       c.cursor,
		CommunityIDs: c.query.CommunityIDs,
		VenueID:      c.query.VenueID,
		ViewerID:     c.query.ViewerID,
		Sort:         c.query.Sort,
		Timeframe:    c.query.Timeframe,
		PostType:     c.query.PostType,
		Limit:        c.query.Limit,
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	c.mu.Unlock()

	resp, err := c.fetcher.GetFeed(fetchCtx, req)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		// SetQuery or Close ran while we were waiting; they already reset loading
		return nil, ErrStaleQuery
	}
	c.loading = false
	c.cancel = nil

	if err != nil {
		c.lastErr = err
		return nil, err
	}
	c.lastErr = nil

	fresh := make([]*posts.FeedPost, 0, len(resp.Feed))
	for _, p := range resp.Feed {
		if p == nil {
			continue
		}
		if _, dup := c.seen[p.ID]; dup {
			continue
		}
		c.seen[p.ID] = struct{}{}
		fresh = append(fresh, p)
	}
	c.posts = append(c.posts, fresh...)

	c.cursor = resp.Cursor
	c.exhausted = !resp.HasNextPage || resp.Cursor == nil

	return &Page{
		Cursor:      c.cursor,
		Posts:       fresh,
		HasNextPage: !c.exhausted,
	}, nil
}

// SetQuery replaces the query and resets the stream. An in-flight fetch is
// cancelled and its page will not be merged.
func (c *Composer) SetQuery(q Query) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.query = q
	c.posts = nil
	c.seen = make(map[string]struct{})
	c.cursor = nil
	c.exhausted = false
	c.loading = false
	c.lastErr = nil
}

// Close cancels any in-flight fetch and rejects further loads
func (c *Composer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.closed = true
	c.loading = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Posts returns every post loaded so far, in arrival order
func (c *Composer) Posts() []*posts.FeedPost {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*posts.FeedPost, len(c.posts))
	copy(out, c.posts)
	return out
}

// HasNextPage reports whether LoadNext may return more posts
func (c *Composer) HasNextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && !c.exhausted && !c.query.isEmpty()
}

// Err returns the error of the last failed fetch, cleared by the next success.
// A non-nil Err means the caller can offer a retry.
func (c *Composer) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Query returns the current query
func (c *Composer) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}
