// Package persist serializes the registry as independent named JSON
// documents so that later generation runs and the validator can re-use it.
// Each document write is all-or-nothing for that document only; there is no
// transactional guarantee across documents.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/entity"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/registry"
)

// ErrPersistence is returned when a document fails to write or read.
var ErrPersistence = errors.New("persist: document operation failed")

// Document names. Consumers address registry output by these names.
const (
	DocCustomers       = "customers"
	DocProducts        = "products"
	DocOrders          = "orders"
	DocSessionMappings = "session_mappings"
	DocTimeConfig      = "time_config"
	DocCrossRefs       = "cross_refs"
	DocManifest        = "manifest"
)

// Manifest records provenance for a persisted registry.
type Manifest struct {
	RunID       string    `json:"run_id"`
	Seed        int64     `json:"seed"`
	GeneratedAt time.Time `json:"generated_at"`
	Documents   []string  `json:"documents"`
}

// Store reads and writes registry documents in a directory.
type Store struct {
	dir string
	log *zap.Logger
}

// NewStore creates a document store rooted at dir.
func NewStore(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, log: log}
}

// Save writes all registry documents. A failed document does not roll back
// documents already written; every failure is reported in the returned
// error and the remaining documents are still attempted.
func (s *Store) Save(reg *registry.Registry) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrPersistence, s.dir, err)
	}

	documents := []struct {
		name string
		data any
	}{
		{DocCustomers, reg.CustomerIDs},
		{DocProducts, reg.ProductIDs},
		{DocOrders, reg.OrderIDs},
		{DocSessionMappings, reg.Sessions},
		{DocTimeConfig, reg.TimeConfig},
		{DocCrossRefs, reg.CrossRefs},
		{DocManifest, Manifest{
			RunID:       reg.RunID,
			Seed:        reg.Seed,
			GeneratedAt: reg.GeneratedAt,
			Documents: []string{
				DocCustomers, DocProducts, DocOrders,
				DocSessionMappings, DocTimeConfig, DocCrossRefs,
			},
		}},
	}

	var errs []error
	for _, doc := range documents {
		if err := s.writeDocument(doc.name, doc.data); err != nil {
			s.log.Error("document write failed", zap.String("document", doc.name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		s.log.Debug("document written", zap.String("document", doc.name))
	}
	return errors.Join(errs...)
}

// Load reads a previously saved registry back from the store.
func (s *Store) Load() (*registry.Registry, error) {
	var manifest Manifest
	if err := s.readDocument(DocManifest, &manifest); err != nil {
		return nil, err
	}

	reg := &registry.Registry{
		RunID:       manifest.RunID,
		Seed:        manifest.Seed,
		GeneratedAt: manifest.GeneratedAt,
		Sessions:    make(map[string]entity.SessionMapping),
	}

	if err := s.readDocument(DocCustomers, &reg.CustomerIDs); err != nil {
		return nil, err
	}
	if err := s.readDocument(DocProducts, &reg.ProductIDs); err != nil {
		return nil, err
	}
	if err := s.readDocument(DocOrders, &reg.OrderIDs); err != nil {
		return nil, err
	}
	if err := s.readDocument(DocSessionMappings, &reg.Sessions); err != nil {
		return nil, err
	}
	if err := s.readDocument(DocTimeConfig, &reg.TimeConfig); err != nil {
		return nil, err
	}
	if err := s.readDocument(DocCrossRefs, &reg.CrossRefs); err != nil {
		return nil, err
	}
	return reg, nil
}

// writeDocument marshals data and overwrites any existing document of the
// same name unconditionally.
func (s *Store) writeDocument(name string, data any) error {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling %s: %v", ErrPersistence, name, err)
	}
	path := filepath.Join(s.dir, name+".json")
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrPersistence, name, err)
	}
	return nil
}

// readDocument loads a named document into out.
func (s *Store) readDocument(name string, out any) error {
	path := filepath.Join(s.dir, name+".json")
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrPersistence, name, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrPersistence, name, err)
	}
	return nil
}
