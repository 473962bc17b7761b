package doc_analyzer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/meysamhadeli/odindoc/doc_analyzer/models"
	"github.com/zeebo/xxh3"
)

// cacheFormat is mixed into every key so entries written by an older
// extractor are never decoded.
const cacheFormat = "records.v1"

const cacheFileSuffix = ".cache"

// CacheEntry represents a cached extraction result with metadata of the
// source file it was computed from.
type CacheEntry struct {
	Records   []models.DocRecord
	Timestamp time.Time
	FileSize  int64
	ModTime   time.Time
	Key       string
}

// FileCache manages file-based caching with invalidation on mtime and size.
type FileCache struct {
	cacheDir string
	mutex    sync.RWMutex
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	LastResetTime time.Time
	mutex         sync.RWMutex
}

// CacheManager provides high-level caching operations
type CacheManager struct {
	fileCache *FileCache
	stats     *CacheStats
}

// NewCacheManager creates a new cache manager instance.
// If cacheDir is empty, it defaults to ".cache/odindoc" in the current working directory.
func NewCacheManager(cacheDir string) (*CacheManager, error) {
	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		cacheDir = filepath.Join(cwd, ".cache", "odindoc")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cacheManager := &CacheManager{
		fileCache: &FileCache{cacheDir: cacheDir},
		stats: &CacheStats{
			LastResetTime: time.Now(),
		},
	}

	// Conservative cleanup of entries nobody has refreshed for a week.
	if err := cacheManager.CleanExpiredCache(7 * 24 * time.Hour); err != nil {
		return nil, err
	}

	return cacheManager, nil
}

// CacheDir returns the directory holding the cache files.
func (cm *CacheManager) CacheDir() string {
	return cm.fileCache.cacheDir
}

// generateCacheKey creates a unique cache key for a file
func (fc *FileCache) generateCacheKey(filePath string) string {
	return fmt.Sprintf("%016x%s", xxh3.HashString(cacheFormat+"\x00"+filePath), cacheFileSuffix)
}

// getCachePath returns the full path to a cache file
func (fc *FileCache) getCachePath(cacheKey string) string {
	return filepath.Join(fc.cacheDir, cacheKey)
}

// isFileChanged checks if a file has been modified since last cache
func (fc *FileCache) isFileChanged(filePath string, entry *CacheEntry) (bool, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return true, err
	}

	if !fileInfo.ModTime().Equal(entry.ModTime) || fileInfo.Size() != entry.FileSize {
		return true, nil
	}

	return false, nil
}

func readEntry(cachePath string) (*CacheEntry, error) {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, err
	}
	var entry CacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Get retrieves the records cached for filePath. Entries whose source file has
// changed since they were written are removed.
func (fc *FileCache) Get(filePath string) ([]models.DocRecord, bool) {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	cachePath := fc.getCachePath(fc.generateCacheKey(filePath))

	entry, err := readEntry(cachePath)
	if err != nil {
		return nil, false
	}

	changed, err := fc.isFileChanged(filePath, entry)
	if err != nil || changed {
		os.Remove(cachePath)
		return nil, false
	}

	return entry.Records, true
}

// Set stores records in cache with the current metadata of filePath.
func (fc *FileCache) Set(filePath string, records []models.DocRecord) error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}

	cacheKey := fc.generateCacheKey(filePath)
	entry := CacheEntry{
		Records:   records,
		Timestamp: time.Now(),
		FileSize:  fileInfo.Size(),
		ModTime:   fileInfo.ModTime(),
		Key:       cacheKey,
	}

	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(entry); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := os.WriteFile(fc.getCachePath(cacheKey), buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// Delete removes a cache entry
func (fc *FileCache) Delete(filePath string) error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	cachePath := fc.getCachePath(fc.generateCacheKey(filePath))
	if err := os.Remove(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}

	return nil
}

// cacheFiles lists the entries in the cache directory that look like cache files.
func (fc *FileCache) cacheFiles() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(fc.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	files := entries[:0]
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), cacheFileSuffix) {
			files = append(files, entry)
		}
	}
	return files, nil
}

// GetRecordsCache retrieves cached extraction results for a source file.
func (cm *CacheManager) GetRecordsCache(filePath string) ([]models.DocRecord, bool) {
	records, found := cm.fileCache.Get(filePath)
	if !found {
		cm.recordCacheMiss()
		return nil, false
	}
	cm.recordCacheHit()
	return records, true
}

// SetRecordsCache stores extraction results for a source file.
func (cm *CacheManager) SetRecordsCache(filePath string, records []models.DocRecord) error {
	return cm.fileCache.Set(filePath, records)
}

// DeleteRecordsCache evicts the cached results of a source file.
func (cm *CacheManager) DeleteRecordsCache(filePath string) {
	if err := cm.fileCache.Delete(filePath); err != nil {
		log.Printf("Warning: %v", err)
	}
}

// GetCacheStats returns storage statistics merged with the hit/miss counters.
func (cm *CacheManager) GetCacheStats() (map[string]interface{}, error) {
	cm.fileCache.mutex.RLock()
	defer cm.fileCache.mutex.RUnlock()

	files, err := cm.fileCache.cacheFiles()
	if err != nil {
		return nil, err
	}

	var totalSize int64
	for _, file := range files {
		if info, err := file.Info(); err == nil {
			totalSize += info.Size()
		}
	}

	stats := cm.GetPerformanceStats()
	stats["cache_enabled"] = true
	stats["cache_files"] = len(files)
	stats["total_size"] = totalSize
	stats["cache_dir"] = cm.fileCache.cacheDir

	return stats, nil
}

// ClearCache completely removes all cache entries
func (cm *CacheManager) ClearCache() error {
	cm.fileCache.mutex.Lock()
	defer cm.fileCache.mutex.Unlock()

	files, err := cm.fileCache.cacheFiles()
	if err != nil {
		return err
	}

	for _, file := range files {
		cachePath := filepath.Join(cm.fileCache.cacheDir, file.Name())
		if err := os.Remove(cachePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete cache file %s: %w", file.Name(), err)
		}
	}

	return nil
}

// CleanExpiredCache removes cache entries older than specified duration
func (cm *CacheManager) CleanExpiredCache(maxAge time.Duration) error {
	cm.fileCache.mutex.Lock()
	defer cm.fileCache.mutex.Unlock()

	files, err := cm.fileCache.cacheFiles()
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-maxAge)

	for _, file := range files {
		cachePath := filepath.Join(cm.fileCache.cacheDir, file.Name())

		entry, err := readEntry(cachePath)
		if err != nil {
			// Unreadable entries are useless; drop them.
			os.Remove(cachePath)
			continue
		}

		if entry.Timestamp.Before(cutoff) {
			os.Remove(cachePath)
		}
	}

	return nil
}
