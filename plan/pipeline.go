package plan

// StreamKind distinguishes the two ways a pipeline's overall input or
// output can be wired: inherited from the supervisor's own standard
// stream, or redirected to a named file. Keeping this as an enum (rather
// than comparing "stdin"/"stdout" sentinel strings at execution time)
// means a config value that happens to be a path named "stdout" can
// never be mistaken for the sentinel once it's past the parser.
type StreamKind int

const (
	// Standard means "inherit the supervisor's own standard stream".
	Standard StreamKind = iota
	// File means "redirect to the named file".
	File
)

// StreamSpec is the tagged variant {Standard | File(path)} used for both
// a pipeline's input and its output.
type StreamSpec struct {
	Kind StreamKind
	Path string // meaningful only when Kind == File
}

// StdStream returns a StreamSpec that inherits the supervisor's own
// standard stream.
func StdStream() StreamSpec {
	return StreamSpec{Kind: Standard}
}

// FileStream returns a StreamSpec that redirects to the named file.
func FileStream(path string) StreamSpec {
	return StreamSpec{Kind: File, Path: path}
}

// DefaultPipelineName is the fixed name of the pipeline synthesized for
// jobs that no configured pipeline references.
const DefaultPipelineName = "default-pipe"

// Pipeline is an ordered, non-branching chain of jobs whose adjacent
// stdout/stdin will be connected by an anonymous channel.
type Pipeline struct {
	Name    string
	Input   StreamSpec
	Output  StreamSpec
	Members []JobIndex

	// Staging is the path of this pipeline's isolated capture file. It
	// is the empty string until the Output Sink Manager assigns it,
	// which it does for every pipeline before any child is spawned.
	Staging string
}

// BuildDefaultPipeline synthesizes the default pipeline for a job set of
// size jobCount, given the set of job indices already referenced by a
// configured pipeline. Members are emitted in ascending index order
// (original job declaration order). It returns nil if every job is
// already referenced by some configured pipeline.
func BuildDefaultPipeline(jobCount int, assigned map[JobIndex]bool) *Pipeline {
	var members []JobIndex
	for i := 0; i < jobCount; i++ {
		idx := JobIndex(i)
		if !assigned[idx] {
			members = append(members, idx)
		}
	}
	if len(members) == 0 {
		return nil
	}
	return &Pipeline{
		Name:    DefaultPipelineName,
		Input:   StdStream(),
		Output:  StdStream(),
		Members: members,
	}
}
