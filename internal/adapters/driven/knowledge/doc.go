// Package knowledge loads the reference corpus from a directory on disk.
//
// The directory holds an index (index.json, or index.yaml as an alternative)
// listing examples and rules, plus the example files the index points at:
//
//	knowledge/
//	├── index.json
//	├── html/
//	│   └── starfield.html
//	└── python/
//	    └── rss_parser.py
//
// Example paths are relative to the directory. Examples whose file is
// missing or unreadable are dropped at load time.
package knowledge
