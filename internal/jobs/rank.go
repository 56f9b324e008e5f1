package jobs

import (
	"math"
	"sort"
	"strings"

	"github.com/ecodeclub/ekit/slice"

	"placement-backend/internal/placement"
)

const DefaultTopJobs = 5

// Filter narrows a job list. Empty fields are ignored; set fields are ANDed.
type Filter struct {
	Title    string   `form:"title" json:"title"`
	Keywords []string `form:"keyword" json:"keywords"`
	Location string   `form:"location" json:"location"`
}

// FilterJobs keeps jobs whose title and location contain the filter values and whose
// title or description contains at least one keyword.
func FilterJobs(jobs []placement.Job, f Filter) []placement.Job {
	return slice.FindAll(jobs, func(j placement.Job) bool {
		if f.Title != "" && !containsFold(j.Title, f.Title) {
			return false
		}
		if len(f.Keywords) > 0 {
			hit := false
			for _, k := range f.Keywords {
				if containsFold(j.Description, k) || containsFold(j.Title, k) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		}
		if f.Location != "" && !containsFold(j.Location, f.Location) {
			return false
		}
		return true
	})
}

// RankJobs returns a copy sorted by match score, highest first. Ties keep input order.
func RankJobs(jobs []placement.Job) []placement.Job {
	out := append([]placement.Job(nil), jobs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchScore > out[j].MatchScore })
	return out
}

// TopJobs ranks and takes the first n. Non-positive n means DefaultTopJobs.
func TopJobs(jobs []placement.Job, n int) []placement.Job {
	if n <= 0 {
		n = DefaultTopJobs
	}
	ranked := RankJobs(jobs)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

type SalaryTrend struct {
	Min int `json:"min"`
	Max int `json:"max"`
	Avg int `json:"avg"`
}

type Trends struct {
	CommonSkills []string    `json:"commonSkills"`
	CommonRoles  []string    `json:"commonRoles"`
	SalaryTrend  SalaryTrend `json:"salaryTrend"`
}

// AnalyzeTrends counts requirement strings and title words across jobs and pools
// every salary min and max into one range.
func AnalyzeTrends(jobs []placement.Job) Trends {
	skills := newCounter()
	roles := newCounter()
	var salaries []int

	for _, j := range jobs {
		for _, r := range j.Requirements {
			skills.add(r)
		}
		for _, w := range strings.Split(j.Title, " ") {
			roles.add(w)
		}
		if j.Salary != nil {
			salaries = append(salaries, j.Salary.Min, j.Salary.Max)
		}
	}

	return Trends{
		CommonSkills: skills.top(10),
		CommonRoles:  roles.top(5),
		SalaryTrend:  salaryTrend(salaries),
	}
}

func salaryTrend(values []int) SalaryTrend {
	if len(values) == 0 {
		return SalaryTrend{}
	}
	t := SalaryTrend{Min: values[0], Max: values[0]}
	sum := 0
	for _, v := range values {
		t.Min = min(t.Min, v)
		t.Max = max(t.Max, v)
		sum += v
	}
	t.Avg = int(math.Round(float64(sum) / float64(len(values))))
	return t
}

// counter tallies strings and remembers first-seen order for stable tie-breaking.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) top(n int) []string {
	keys := append([]string{}, c.order...)
	sort.SliceStable(keys, func(i, j int) bool { return c.counts[keys[i]] > c.counts[keys[j]] })
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
