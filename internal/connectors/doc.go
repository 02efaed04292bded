// Package connectors keeps the store in step with sources that change on
// their own. The filesystem connector watches local paths and re-ingests
// files as they are written.
package connectors
