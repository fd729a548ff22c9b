package idgen

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/nrednav/cuid2"
	"github.com/oklog/ulid/v2"
	"github.com/segmentio/ksuid"
)

const (
	StrategyUUID   = "uuid"
	StrategyULID   = "ulid"
	StrategyKSUID  = "ksuid"
	StrategyNanoID = "nanoid"
	StrategyCUID2  = "cuid2"
)

const (
	nanoIDSize     = 21
	nanoIDAlphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	cuid2Length    = 24
)

// Generator produces opaque unique identifiers for assets.
type Generator interface {
	Generate() (string, error)
	Validate(id string) bool
}

// New returns the generator for strategy. An empty strategy selects UUID.
func New(strategy string) (Generator, error) {
	switch strategy {
	case "", StrategyUUID:
		return UUIDGenerator{}, nil
	case StrategyULID:
		return ULIDGenerator{}, nil
	case StrategyKSUID:
		return KSUIDGenerator{}, nil
	case StrategyNanoID:
		return NanoIDGenerator{}, nil
	case StrategyCUID2:
		gen, err := cuid2.Init(cuid2.WithLength(cuid2Length))
		if err != nil {
			return nil, fmt.Errorf("failed to init CUID2 generator: %w", err)
		}
		return &CUID2Generator{generate: gen}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy: %s", strategy)
	}
}

// UUIDGenerator generates UUID v4 ids.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id.String(), nil
}

func (UUIDGenerator) Validate(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.Version() == 4
}

// ULIDGenerator generates lexicographically sortable ULIDs.
type ULIDGenerator struct{}

func (ULIDGenerator) Generate() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

func (ULIDGenerator) Validate(id string) bool {
	if len(id) != ulid.EncodedSize {
		return false
	}
	_, err := ulid.ParseStrict(id)
	return err == nil
}

// KSUIDGenerator generates K-sortable ids.
type KSUIDGenerator struct{}

func (KSUIDGenerator) Generate() (string, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate KSUID: %w", err)
	}
	return id.String(), nil
}

func (KSUIDGenerator) Validate(id string) bool {
	if len(id) != 27 {
		return false
	}
	_, err := ksuid.Parse(id)
	return err == nil
}

// NanoIDGenerator generates URL-safe NanoIDs. The alphabet never yields a
// path separator.
type NanoIDGenerator struct{}

func (NanoIDGenerator) Generate() (string, error) {
	id, err := gonanoid.Generate(nanoIDAlphabet, nanoIDSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate NanoID: %w", err)
	}
	return id, nil
}

func (NanoIDGenerator) Validate(id string) bool {
	if len(id) != nanoIDSize {
		return false
	}
	for _, c := range id {
		if !strings.ContainsRune(nanoIDAlphabet, c) {
			return false
		}
	}
	return true
}

// CUID2Generator generates collision-resistant CUID2 ids.
type CUID2Generator struct {
	generate func() string
}

func (g *CUID2Generator) Generate() (string, error) {
	return g.generate(), nil
}

func (g *CUID2Generator) Validate(id string) bool {
	return len(id) == cuid2Length && cuid2.IsCuid(id)
}
