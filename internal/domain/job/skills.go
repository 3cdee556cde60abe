package job

import "strings"

// EnsureSkillsIsArray turns a comma separated "skills" string into a list of
// trimmed, non-empty entries. Jobs without a string skills field are returned
// unchanged. The map is modified in place.
func EnsureSkillsIsArray(job map[string]any) map[string]any {
	if job == nil {
		return nil
	}
	raw, ok := job["skills"].(string)
	if !ok {
		return job
	}
	job["skills"] = SplitSkills(raw)
	return job
}

func SplitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// Objects keeps the JSON objects of a decoded array and normalizes their skills.
func Objects(items []any) []map[string]any {
	jobs := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		jobs = append(jobs, EnsureSkillsIsArray(m))
	}
	return jobs
}
