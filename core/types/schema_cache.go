package types

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/crypto/blake2b"
)

// schemaCache caches compiled JSON Schema validators by content hash
type schemaCache struct {
	mu      sync.RWMutex
	cache   map[string]*jsonschema.Schema
	maxSize int
}

func newSchemaCache(maxSize int) *schemaCache {
	return &schemaCache{
		cache:   make(map[string]*jsonschema.Schema),
		maxSize: maxSize,
	}
}

func (c *schemaCache) get(hash string) (*jsonschema.Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.cache[hash]
	return s, ok
}

func (c *schemaCache) put(hash string, schema *jsonschema.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple eviction: if cache full, clear it
	if len(c.cache) >= c.maxSize {
		c.cache = make(map[string]*jsonschema.Schema)
	}
	c.cache[hash] = schema
}

func (c *schemaCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// hashSchema computes the BLAKE2b-256 hash of a schema document
func hashSchema(content string) string {
	sum := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

var compiledSchemas = newSchemaCache(16)

// compileSchema compiles a draft 2020-12 schema document, reusing an earlier
// compilation of identical content. Remote $refs are refused.
func compileSchema(content string) (*jsonschema.Schema, error) {
	hash := hashSchema(content)
	if s, ok := compiledSchemas.get(hash); ok {
		return s, nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if compiler.Formats == nil {
		compiler.Formats = make(map[string]func(interface{}) bool)
	}
	compiler.Formats["semver"] = isSemver
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("$ref not allowed: %s", url)
	}

	url := "schema://" + hash + ".json"
	if err := compiler.AddResource(url, strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema compilation failed: %w", err)
	}

	compiledSchemas.put(hash, s)
	return s, nil
}
