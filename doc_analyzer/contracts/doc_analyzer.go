package contracts

import "github.com/meysamhadeli/odindoc/doc_analyzer/models"

type IDocAnalyzer interface {
	ScanProject(rootDir string) (*models.ProjectDocs, error)
	ProcessFile(file models.SourceFile) []models.DocRecord
	CacheEnabled() bool
	GetCacheStats() (map[string]interface{}, error)
	ClearCache() error
}
