package doc_analyzer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/meysamhadeli/odindoc/constants/lipgloss"
	"github.com/meysamhadeli/odindoc/doc_analyzer/contracts"
	"github.com/meysamhadeli/odindoc/doc_analyzer/models"
	"github.com/meysamhadeli/odindoc/utils"
)

// ErrCacheDisabled is returned by cache operations when caching is off.
var ErrCacheDisabled = errors.New("extraction cache is disabled")

// AnalyzerOptions configures a DocAnalyzer.
type AnalyzerOptions struct {
	// Extensions selects source files, e.g. ".odin".
	Extensions []string
	// IgnoreDirs holds directory names or root-relative paths that are never descended into.
	IgnoreDirs  []string
	EnableCache bool
	CacheDir    string
	// Output receives per-file diagnostics. Defaults to os.Stdout.
	Output io.Writer
}

// DocAnalyzer walks a source tree and extracts documentation records.
type DocAnalyzer struct {
	extensions   []string
	ignoreDirs   []string
	out          io.Writer
	cacheManager *CacheManager
}

// NewDocAnalyzer initializes a new DocAnalyzer.
func NewDocAnalyzer(options AnalyzerOptions) contracts.IDocAnalyzer {
	analyzer := &DocAnalyzer{
		extensions: normalizeExtensions(options.Extensions),
		ignoreDirs: utils.NormalizeIgnoreList(options.IgnoreDirs),
		out:        options.Output,
	}
	if analyzer.out == nil {
		analyzer.out = os.Stdout
	}

	if options.EnableCache {
		cacheManager, err := NewCacheManager(options.CacheDir)
		if err != nil {
			// Fallback to no caching if cache initialization fails
			log.Printf("Warning: Failed to initialize cache manager: %v", err)
		} else {
			analyzer.cacheManager = cacheManager
		}
	}

	return analyzer
}

// ScanProject walks rootDir in lexical order and returns every source file
// that holds at least one documentation record. Ignored directories are
// skipped before descent. Unreadable files are reported and skipped; only a
// failure to read rootDir itself is returned as an error.
func (analyzer *DocAnalyzer) ScanProject(rootDir string) (*models.ProjectDocs, error) {
	result := &models.ProjectDocs{RootDir: rootDir}

	patterns, err := utils.GetIgnorePatterns(rootDir)
	if err != nil {
		return nil, err
	}
	ignoreDirs, err := utils.ResolveIgnoreDirs(rootDir, analyzer.ignoreDirs)
	if err != nil {
		return nil, err
	}

	// Hit rate is reported per scan.
	if analyzer.cacheManager != nil {
		analyzer.cacheManager.ResetPerformanceStats()
	}

	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootDir {
				return err
			}
			analyzer.skip(result, path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == rootDir {
			return nil
		}

		relativePath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return fmt.Errorf("failed to resolve relative path of %s: %w", path, err)
		}
		relativePath = filepath.ToSlash(relativePath)

		if d.IsDir() {
			if utils.IsIgnoredDir(relativePath, ignoreDirs) || utils.IsPatternIgnored(relativePath, patterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if !analyzer.isSourceFile(path) || utils.IsPatternIgnored(relativePath, patterns) {
			return nil
		}

		records, err := analyzer.extractFile(path, relativePath)
		if err != nil {
			analyzer.skip(result, relativePath, err)
			return nil
		}
		if len(records) == 0 {
			return nil
		}

		result.Files = append(result.Files, models.FileDocs{RelativePath: relativePath, Records: records})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", rootDir, err)
	}

	return result, nil
}

// ProcessFile extracts the documentation records of one source file.
func (analyzer *DocAnalyzer) ProcessFile(file models.SourceFile) []models.DocRecord {
	return Extract(string(file.Content))
}

// extractFile reads the file before consulting the cache, so that a file that
// became unreadable is skipped and its cached records are evicted.
func (analyzer *DocAnalyzer) extractFile(path, relativePath string) ([]models.DocRecord, error) {
	content, err := os.ReadFile(path)
	if err == nil && !utf8.Valid(content) {
		err = fmt.Errorf("file is not valid UTF-8")
	} else if err != nil {
		err = fmt.Errorf("failed to read file: %w", err)
	}
	if err != nil {
		if analyzer.cacheManager != nil {
			analyzer.cacheManager.DeleteRecordsCache(path)
		}
		return nil, err
	}

	if analyzer.cacheManager != nil {
		if records, found := analyzer.cacheManager.GetRecordsCache(path); found {
			return records, nil
		}
	}

	records := analyzer.ProcessFile(models.SourceFile{Path: path, RelativePath: relativePath, Content: content})

	if analyzer.cacheManager != nil {
		if err := analyzer.cacheManager.SetRecordsCache(path, records); err != nil {
			log.Printf("Warning: Failed to cache %s: %v", relativePath, err)
		}
	}

	return records, nil
}

func (analyzer *DocAnalyzer) isSourceFile(path string) bool {
	ext := filepath.Ext(path)
	for _, candidate := range analyzer.extensions {
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}

func normalizeExtensions(extensions []string) []string {
	result := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		result = append(result, ext)
	}
	return result
}

func (analyzer *DocAnalyzer) skip(result *models.ProjectDocs, path string, err error) {
	result.Skipped = append(result.Skipped, path)
	fmt.Fprintln(analyzer.out, lipgloss.Yellow.Render(fmt.Sprintf("Skipping %s: %v", path, err)))
}

func (analyzer *DocAnalyzer) CacheEnabled() bool {
	return analyzer.cacheManager != nil
}

func (analyzer *DocAnalyzer) GetCacheStats() (map[string]interface{}, error) {
	if analyzer.cacheManager == nil {
		return map[string]interface{}{"cache_enabled": false}, nil
	}
	return analyzer.cacheManager.GetCacheStats()
}

func (analyzer *DocAnalyzer) ClearCache() error {
	if analyzer.cacheManager == nil {
		return ErrCacheDisabled
	}
	return analyzer.cacheManager.ClearCache()
}
