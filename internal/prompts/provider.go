package prompts

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
)

//go:embed templates
var templatesFS embed.FS

// ErrPromptNotFound is returned for a key with no template file.
var ErrPromptNotFound = errors.New("prompt template not found")

// Provider serves prompt templates by key, caching them after first read.
// Templates ship embedded in the binary; an override directory takes
// precedence when configured, which is handy for prompt iteration.
type Provider struct {
	overrideDir string
	logger      *zap.Logger

	cacheLock sync.RWMutex
	cacheMap  map[string]string
}

// NewProvider creates a prompt provider. overrideDir may be empty.
func NewProvider(overrideDir string, logger *zap.Logger) *Provider {
	if logger == nil {
		log.Fatal().Msg("Logger is nil for prompts.Provider")
	}
	return &Provider{
		overrideDir: overrideDir,
		logger:      logger.Named("prompts"),
		cacheMap:    make(map[string]string),
	}
}

// Get returns the raw template for a key such as "actor_critic/critic".
func (p *Provider) Get(key string) (string, error) {
	p.cacheLock.RLock()
	content, ok := p.cacheMap[key]
	p.cacheLock.RUnlock()
	if ok {
		return content, nil
	}

	content, err := p.load(key)
	if err != nil {
		return "", err
	}

	p.cacheLock.Lock()
	p.cacheMap[key] = content
	p.cacheLock.Unlock()

	return content, nil
}

// Render loads a template and substitutes {{NAME}} placeholders.
func (p *Provider) Render(key string, vars map[string]string) (string, error) {
	content, err := p.Get(key)
	if err != nil {
		return "", err
	}
	for name, value := range vars {
		content = strings.ReplaceAll(content, "{{"+name+"}}", value)
	}
	return content, nil
}

func (p *Provider) load(key string) (string, error) {
	if p.overrideDir != "" {
		path := filepath.Join(p.overrideDir, key+".md")
		data, err := os.ReadFile(path)
		if err == nil {
			p.logger.Debug("loaded prompt from override dir",
				zap.String("key", key), zap.String("path", path))
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read prompt override '%s': %w", path, err)
		}
		// Fall through to the embedded copy.
	}

	data, err := templatesFS.ReadFile("templates/" + key + ".md")
	if err != nil {
		p.logger.Error("prompt template not found", zap.String("key", key))
		return "", fmt.Errorf("%w: key='%s'", ErrPromptNotFound, key)
	}
	return string(data), nil
}
