package routes

import (
	"path"
	"strings"
)

// PagesDirectories are the possible pages directories, in lookup order.
var PagesDirectories = []string{"pages", "src/pages"}

// PageExtensions are the page file extensions, in precedence order when
// more than one index file exists in a directory.
var PageExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

// NonRoutablePageFiles are the special page files, relative to the pages
// directory and without extension, that never get their own route.
var NonRoutablePageFiles = []string{
	"index",
	"_app",
	"_document",
	"_error",
	"404",
	"404/index",
	"500",
	"500/index",
}

// NonRoutablePages enumerates every project-relative non-routable page file
// for the given pages directories and extensions.
func NonRoutablePages(pagesDirs, extensions []string) []string {
	pages := make([]string, 0, len(pagesDirs)*len(NonRoutablePageFiles)*len(extensions))
	for _, dir := range pagesDirs {
		for _, file := range NonRoutablePageFiles {
			for _, ext := range extensions {
				pages = append(pages, dir+"/"+file+ext)
			}
		}
	}
	return pages
}

// RemoveFileExtension removes the extension of the last element of a
// slash-separated path, if any.
func RemoveFileExtension(filesystemPath string) string {
	dir, base := path.Split(filesystemPath)
	dot := strings.LastIndex(base, ".")
	if dot < 0 {
		return filesystemPath
	}
	return dir + base[:dot]
}

// NonLocalizedPath returns the URL path of a page file under pagesDir: the
// pages directory, the file extension and a trailing "index" element are
// removed.
//
//	NonLocalizedPath("pages/hello/index.tsx", "pages") // "/hello"
//	NonLocalizedPath("pages/index.tsx", "pages")       // "/"
func NonLocalizedPath(filesystemPath, pagesDir string) string {
	return toURLPath(RemoveFileExtension(relativePath(filesystemPath, pagesDir)))
}

// DirectoryPath returns the URL path of a directory under pagesDir. Unlike
// NonLocalizedPath, dots in the last element are kept.
//
//	DirectoryPath("pages/v1.2", "pages") // "/v1.2"
//	DirectoryPath("pages", "pages")      // "/"
func DirectoryPath(dir, pagesDir string) string {
	return toURLPath(relativePath(dir, pagesDir))
}

func relativePath(filesystemPath, pagesDir string) string {
	if filesystemPath == pagesDir {
		return ""
	}
	return strings.TrimPrefix(filesystemPath, pagesDir+"/")
}

func toURLPath(p string) string {
	if p == "index" {
		p = ""
	}
	p = strings.TrimSuffix(p, "/index")
	return "/" + strings.TrimPrefix(p, "/")
}

// IsAPIPath reports whether a URL path is an API path.
func IsAPIPath(urlPath string) bool {
	return urlPath == "/api" || strings.HasPrefix(urlPath, "/api/")
}

// IsDynamicPath reports whether the last segment of a URL path is a
// parameter ([id], [...rest]).
func IsDynamicPath(urlPath string) bool {
	seg := LastSegment(urlPath)
	return strings.HasPrefix(seg, "[") && strings.HasSuffix(seg, "]")
}

// LastSegment returns the last segment of a URL path.
func LastSegment(urlPath string) string {
	return urlPath[strings.LastIndex(urlPath, "/")+1:]
}

// ParentPath returns the URL path of the parent route. Top-level paths
// (/about-us) have no parent.
func ParentPath(urlPath string) (string, bool) {
	i := strings.LastIndex(urlPath, "/")
	if i <= 0 {
		return "", false
	}
	return urlPath[:i], true
}
