// Package plan holds the immutable in-memory entities produced by
// parsing a pipeyard configuration: jobs, pipelines, and the default
// pipeline synthesized for jobs that no configured pipeline references.
package plan

// Job is one named external command: an executable (resolved via the
// host's search path, exactly like exec.LookPath) plus its literal
// argument vector. Jobs are immutable once parsed.
type Job struct {
	Name string
	Exec string
	Args []string
}

// JobIndex identifies a Job by its position in the job sequence returned
// by the parser.
type JobIndex int
