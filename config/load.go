// Package config loads the YAML configuration described in spec.md §6
// into the (jobs, pipelines) sequences plus the set of job indices that
// some pipeline references, which the rest of pipeyard is built on. The parser is, per spec, an external
// collaborator to the execution engine — but the module still needs one
// to be runnable end to end, so this is modeled on the field layout of
// the original jobdesc.cpp and decoded with gopkg.in/yaml.v3, the way
// the rest of the retrieved corpus parses pipeline configuration.
package config

import (
	"fmt"
	"os"

	"github.com/pipeyard/pipeyard/plan"
	"gopkg.in/yaml.v3"
)

const (
	stdinSentinel  = "stdin"
	stdoutSentinel = "stdout"
)

// Document is the parsed result of one configuration file.
type Document struct {
	Jobs      []plan.Job
	Pipelines []*plan.Pipeline
	// Assigned holds the index of every job referenced by at least one
	// configured pipeline, exactly the set plan.BuildDefaultPipeline
	// needs.
	Assigned map[plan.JobIndex]bool
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	jobsByName := make(map[string]plan.JobIndex)
	jobs, err := parseJobs(raw, jobsByName)
	if err != nil {
		return nil, err
	}

	pipelines, assigned, err := parsePipelines(raw, jobsByName)
	if err != nil {
		return nil, err
	}

	return &Document{Jobs: jobs, Pipelines: pipelines, Assigned: assigned}, nil
}

func parseJobs(raw map[string]interface{}, jobsByName map[string]plan.JobIndex) ([]plan.Job, error) {
	rawJobs, ok := raw["Jobs"]
	if !ok {
		return nil, fmt.Errorf("%w: missing required top-level \"Jobs\" attribute", ErrConfigInvalid)
	}
	items, ok := rawJobs.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: \"Jobs\" must be a list", ErrConfigInvalid)
	}

	jobs := make([]plan.Job, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: each job must be a mapping", ErrConfigInvalid)
		}

		name, err := requiredString(fields, "Name")
		if err != nil {
			return nil, err
		}
		exec, err := requiredString(fields, "Exec")
		if err != nil {
			return nil, err
		}
		args, err := requiredStringList(fields, "Args")
		if err != nil {
			return nil, err
		}

		if _, dup := jobsByName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate job name %q", ErrConfigInvalid, name)
		}

		jobsByName[name] = plan.JobIndex(len(jobs))
		jobs = append(jobs, plan.Job{Name: name, Exec: exec, Args: args})
	}
	return jobs, nil
}

func parsePipelines(
	raw map[string]interface{}, jobsByName map[string]plan.JobIndex,
) ([]*plan.Pipeline, map[plan.JobIndex]bool, error) {
	rawPipes, ok := raw["Pipes"]
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing required top-level \"Pipes\" attribute", ErrConfigInvalid)
	}
	items, ok := rawPipes.([]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("%w: \"Pipes\" must be a list", ErrConfigInvalid)
	}

	assigned := make(map[plan.JobIndex]bool)
	pipelines := make([]*plan.Pipeline, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("%w: each pipeline must be a mapping", ErrConfigInvalid)
		}

		name, err := requiredString(fields, "Name")
		if err != nil {
			return nil, nil, err
		}
		input, err := requiredString(fields, "input")
		if err != nil {
			return nil, nil, err
		}
		output, err := requiredString(fields, "output")
		if err != nil {
			return nil, nil, err
		}
		jobNames, err := requiredStringList(fields, "Pipe")
		if err != nil {
			return nil, nil, err
		}

		members := make([]plan.JobIndex, 0, len(jobNames))
		for _, jobName := range jobNames {
			idx, ok := jobsByName[jobName]
			if !ok {
				return nil, nil, fmt.Errorf("%w: pipeline %q references unknown job %q", ErrConfigInvalid, name, jobName)
			}
			members = append(members, idx)
			// Last-pipeline-wins for a job referenced by more than one
			// pipeline is an explicit open question in spec.md §9;
			// pipeyard resolves it by rejecting the configuration
			// outright (see DESIGN.md) rather than silently letting
			// one pipeline's claim on the job override another's.
			if assigned[idx] {
				return nil, nil, fmt.Errorf("%w: job %q is referenced by more than one pipeline", ErrConfigInvalid, jobName)
			}
			assigned[idx] = true
		}

		pipelines = append(pipelines, &plan.Pipeline{
			Name:    name,
			Input:   parseStream(input),
			Output:  parseStream(output),
			Members: members,
		})
	}
	return pipelines, assigned, nil
}

func parseStream(value string) plan.StreamSpec {
	switch value {
	case stdinSentinel, stdoutSentinel:
		return plan.StdStream()
	default:
		return plan.FileStream(value)
	}
}

func requiredString(fields map[string]interface{}, key string) (string, error) {
	v, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: missing required attribute %q", ErrConfigInvalid, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: attribute %q must be a string", ErrConfigInvalid, key)
	}
	return s, nil
}

func requiredStringList(fields map[string]interface{}, key string) ([]string, error) {
	v, ok := fields[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing required attribute %q", ErrConfigInvalid, key)
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: attribute %q must be a list", ErrConfigInvalid, key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: attribute %q must be a list of strings", ErrConfigInvalid, key)
		}
		out = append(out, s)
	}
	return out, nil
}
