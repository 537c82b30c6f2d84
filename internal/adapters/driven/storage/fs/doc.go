// Package fs stores clarification sessions, run artifacts and project backups
// as plain files under the application home.
//
// Layout:
//
//	<home>/dialogs/<session_id>.json
//	<home>/runs/<run_id>/<file>
//	<home>/projects/<project>_<run_id>/<file>
//	<home>/backups/projects_<timestamp>.tar.br
//
// Writes go to a temporary "*.tmp" sibling and are renamed into place, so a
// reader never sees a partial file. Temporaries left behind by a crash are
// removed by the Janitor.
package fs
