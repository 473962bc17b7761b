package models

// Param is one @param annotation, in the order it appeared in the comment.
type Param struct {
	Name        string
	Description string
}

// DocRecord is the documentation extracted for one procedure declaration.
type DocRecord struct {
	Name        string
	Description string
	Params      []Param
	Return      string
	Signature   string
}

// SourceFile holds the path and content of a file. Content is read once and
// never modified.
type SourceFile struct {
	Path         string
	RelativePath string
	Content      []byte
}

// FileDocs is a source file that produced at least one record.
type FileDocs struct {
	RelativePath string
	Records      []DocRecord
}

type ProjectDocs struct {
	RootDir string
	Files   []FileDocs
	// Skipped lists files that could not be read.
	Skipped []string
}
