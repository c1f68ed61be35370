// Package export writes discussion transcripts to plain-text files, one file
// per discussion, named after the recording time, duration, topic and group.
//
// Files are opened in append mode, so exporting the same discussion twice
// adds the transcript again rather than replacing it.
package export
