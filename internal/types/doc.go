// Package types holds the data model shared by every stage: verse positions
// and units, hadith records, renderer input blocks, the progress cursor and
// the sentinel errors callers match with errors.Is.
package types
