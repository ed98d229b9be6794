package core

import (
	"strings"
	"unicode/utf8"
)

// MaxFolderNameLength is the longest folder name accepted.
const MaxFolderNameLength = 256

// PathSeparator delimits folder path segments.
const PathSeparator = "/"

// ExternalFolder is a folder to be created by an import.
// Two folders are the same folder iff their full paths are equal.
type ExternalFolder struct {
	Name             string `json:"name"`
	FolderParentPath string `json:"folder_parent_path"`
}

// Path returns the full path of the folder.
func (f ExternalFolder) Path() string {
	return JoinPath(f.FolderParentPath, f.Name)
}

// Validate checks the folder name.
func (f ExternalFolder) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ValidationError{Field: "folder_name", Message: "required field is empty"}
	}
	if strings.Contains(f.Name, PathSeparator) {
		return ValidationError{Field: "folder_name", Value: f.Name, Message: "must not contain " + PathSeparator}
	}
	if utf8.RuneCountInString(f.Name) > MaxFolderNameLength {
		return checkLength("folder_name", f.Name, MaxFolderNameLength)
	}
	return nil
}

// JoinPath appends a segment to a parent path.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + PathSeparator + name
}

// SplitPath splits a delimited path into trimmed, non-empty segments.
func SplitPath(path string) []string {
	parts := strings.Split(path, PathSeparator)
	segments := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
