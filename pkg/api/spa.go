// Source: https://github.com/mandrigin/gin-spa
//
// MIT License
//
// Copyright (c) 2020 Igor Mandrigin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"github.com/jobtracker/jobtracker/pkg/apiresponses"
)

// cachePolicy picks Cache-Control for a dashboard path. Vite emits hashed
// file names under /assets/, so those never change.
func cachePolicy(path string) string {
	switch {
	case strings.HasPrefix(path, "/assets/"):
		return "public, max-age=31536000, immutable"
	case path == "/" || strings.HasSuffix(path, ".html"):
		return "no-cache, must-revalidate"
	default:
		return "public, max-age=3600, must-revalidate"
	}
}

// cacheControlWriter sets Cache-Control on successful responses only, so a
// 404 or 304 from the file server is never cached as immutable.
type cacheControlWriter struct {
	http.ResponseWriter
	path        string
	wroteHeader bool
}

func (w *cacheControlWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if statusCode == http.StatusOK {
			w.Header().Set("Cache-Control", cachePolicy(w.path))
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *cacheControlWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// ServeSPA serves the built dashboard from spaDirectory. Unknown paths get
// index.html so client-side routes survive a reload. Directories are never
// listed. Without a build the handler answers 404.
func ServeSPA(urlPrefix, spaDirectory string) gin.HandlerFunc {
	directory := static.LocalFile(spaDirectory, false)
	index := urlPrefix
	if index == "" {
		index = "/"
	}
	fileserver := http.FileServer(directory)
	if urlPrefix != "" {
		fileserver = http.StripPrefix(urlPrefix, fileserver)
	}
	return func(c *gin.Context) {
		defer c.Abort()

		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			apiresponses.RespondNotFoundSimple(c, "Not found")
			return
		}
		if _, err := os.Stat(filepath.Join(spaDirectory, "index.html")); err != nil {
			apiresponses.RespondNotFoundSimple(c, "Dashboard not available")
			return
		}

		path := c.Request.URL.Path
		if !directory.Exists(urlPrefix, path) {
			c.Request.URL.Path = index
			path = "/"
		}
		fileserver.ServeHTTP(&cacheControlWriter{ResponseWriter: c.Writer, path: path}, c.Request)
	}
}
