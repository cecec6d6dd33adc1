package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricelist-cli/internal/model"
	"github.com/sells-group/pricelist-cli/internal/normalize"
	"github.com/sells-group/pricelist-cli/internal/resilience"
	"github.com/sells-group/pricelist-cli/pkg/github"
)

// GitHubStore keeps every list in one JSON document committed to a
// repository. Writes carry the blob SHA they were based on; a stale SHA
// re-reads the document and retries.
type GitHubStore struct {
	client github.Client
	path   string
	retry  resilience.RetryConfig
}

// document is the committed file. Older files use "listas".
type document struct {
	Lists []model.PriceList `json:"lists"`
}

// NewGitHub returns a store over path in the client's repository.
func NewGitHub(client github.Client, path string) *GitHubStore {
	return &GitHubStore{
		client: client,
		path:   path,
		retry: resilience.RetryConfig{
			MaxAttempts: 4,
			ShouldRetry: func(err error) bool { return eris.Is(err, github.ErrConflict) },
			OnRetry:     resilience.RetryLogger("github_store", "save"),
		},
	}
}

// Migrate is a no-op; the document is created on first save.
func (s *GitHubStore) Migrate(context.Context) error { return nil }

func (s *GitHubStore) Close() error { return nil }

// read returns the lists in document order and the blob SHA. A missing file
// reads as empty.
func (s *GitHubStore) read(ctx context.Context) ([]model.PriceList, string, error) {
	f, err := s.client.GetFile(ctx, s.path)
	if eris.Is(err, github.ErrNotFound) {
		return []model.PriceList{}, "", nil
	}
	if err != nil {
		return nil, "", eris.Wrap(err, "github store: read document")
	}
	lists, err := DecodeDocument(f.Content)
	if err != nil {
		return nil, "", err
	}
	return lists, f.SHA, nil
}

// DecodeDocument parses a lists document. It accepts {"lists": [...]},
// {"listas": [...]} and a bare array, normalizing every entry.
func DecodeDocument(b []byte) ([]model.PriceList, error) {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, eris.Wrap(err, "github store: decode document")
	}
	var entries []any
	switch x := raw.(type) {
	case nil:
	case []any:
		entries = x
	case map[string]any:
		for _, key := range []string{"lists", "listas"} {
			if arr, ok := x[key].([]any); ok {
				entries = arr
				break
			}
		}
	default:
		return nil, eris.New("github store: document is neither an object nor an array")
	}
	lists := normalize.Lists(entries)
	for i := range lists {
		if lists[i].ID == "" {
			lists[i].ID = LegacyID(&lists[i])
		}
	}
	return lists, nil
}

// LegacyID derives the id older documents implied for entries without one:
// the list name and effective date joined by "__".
func LegacyID(l *model.PriceList) string {
	date := ""
	if l.EffectiveDate != nil {
		date = l.EffectiveDate.String()
	}
	return l.Name + "__" + date
}

func (s *GitHubStore) Save(ctx context.Context, list *model.PriceList) error {
	if err := validateForSave(list); err != nil {
		return err
	}
	return resilience.Do(ctx, s.retry, func(ctx context.Context) error {
		lists, sha, err := s.read(ctx)
		if err != nil {
			return err
		}
		lists = upsertList(lists, *list)
		return s.write(ctx, lists, sha, fmt.Sprintf("Update price list %s", listLabel(list)))
	})
}

func (s *GitHubStore) Delete(ctx context.Context, id string) error {
	return resilience.Do(ctx, s.retry, func(ctx context.Context) error {
		lists, sha, err := s.read(ctx)
		if err != nil {
			return err
		}
		kept := make([]model.PriceList, 0, len(lists))
		for _, l := range lists {
			if l.ID != id {
				kept = append(kept, l)
			}
		}
		if len(kept) == len(lists) {
			return eris.Wrapf(ErrNotFound, "github store: delete list %s", id)
		}
		return s.write(ctx, kept, sha, fmt.Sprintf("Delete price list %s", id))
	})
}

func (s *GitHubStore) write(ctx context.Context, lists []model.PriceList, sha, message string) error {
	body, err := json.MarshalIndent(document{Lists: lists}, "", "  ")
	if err != nil {
		return eris.Wrap(err, "github store: encode document")
	}
	newSHA, err := s.client.PutFile(ctx, s.path, body, sha, message)
	if err != nil {
		return eris.Wrap(err, "github store: write document")
	}
	zap.L().Debug("github store: committed document",
		zap.String("path", s.path),
		zap.String("sha", newSHA),
		zap.Int("lists", len(lists)),
	)
	return nil
}

func (s *GitHubStore) Get(ctx context.Context, id string) (*model.PriceList, error) {
	lists, _, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range lists {
		if lists[i].ID == id {
			return &lists[i], nil
		}
	}
	return nil, eris.Wrapf(ErrNotFound, "github store: get list %s", id)
}

func (s *GitHubStore) Load(ctx context.Context, previousLimit int) (*model.Snapshot, error) {
	lists, _, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	sortRecentFirst(lists)
	return snapshotOf(lists, previousLimit), nil
}

func (s *GitHubStore) List(ctx context.Context, filter ListFilter) ([]model.ListSummary, error) {
	lists, _, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	sortRecentFirst(lists)
	all := make([]model.ListSummary, len(lists))
	for i := range lists {
		all[i] = lists[i].Summary()
	}
	return filterSummaries(all, filter), nil
}

// upsertList replaces the entry with the same id, or else the entry with the
// same name and effective date, and otherwise puts list first.
func upsertList(lists []model.PriceList, list model.PriceList) []model.PriceList {
	for i := range lists {
		if lists[i].ID == list.ID {
			lists[i] = list
			return lists
		}
	}
	for i := range lists {
		if sameNameAndDate(lists[i], list) {
			lists[i] = list
			return lists
		}
	}
	return append([]model.PriceList{list}, lists...)
}

func sameNameAndDate(a, b model.PriceList) bool {
	if a.Name == "" || a.Name != b.Name {
		return false
	}
	if a.EffectiveDate == nil || b.EffectiveDate == nil {
		return a.EffectiveDate == nil && b.EffectiveDate == nil
	}
	return a.EffectiveDate.Equal(*b.EffectiveDate)
}

func listLabel(l *model.PriceList) string {
	if l.EffectiveDate != nil {
		return fmt.Sprintf("%s (%s)", l.Name, l.EffectiveDate)
	}
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}
