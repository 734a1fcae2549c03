package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const skillsCSV = `skill
python
sql
machine learning
`

const synonymsCSV = `skill,synonyms
python,py;python3
sql,postgres;mysql
`

const weightsCSV = `skill,weight
python,2.0
sql,1.5
`

func TestLoad_FullTables(t *testing.T) {
	cat, err := Load(
		strings.NewReader(skillsCSV),
		strings.NewReader(synonymsCSV),
		strings.NewReader(weightsCSV),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, []string{"machine learning", "python", "sql"}, cat.Names())
	assert.Equal(t, 2.0, cat.Weight("python"))
	assert.Equal(t, 1.5, cat.Weight("sql"))
	assert.Equal(t, DefaultWeight, cat.Weight("machine learning"))
	assert.Equal(t, []string{"python", "py", "python3"}, cat.Variants("python"))
	assert.Empty(t, cat.Warnings())
}

func TestLoad_MissingOptionalTables(t *testing.T) {
	cat, err := Load(strings.NewReader(skillsCSV), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, DefaultWeight, cat.Weight("python"))
	assert.Equal(t, []string{"python"}, cat.Variants("python"))
	assert.Len(t, cat.Warnings(), 2)
}

func TestLoad_EmptySkillListIsFatal(t *testing.T) {
	_, err := Load(strings.NewReader("skill\n"), nil, nil)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "skills", loadErr.Source)
}

func TestLoad_UnknownSkillRowsWarnNotFail(t *testing.T) {
	synonyms := "skill,synonyms\nrust,rustlang\n"
	weights := "skill,weight\nrust,3.0\n"

	cat, err := Load(
		strings.NewReader(skillsCSV),
		strings.NewReader(synonyms),
		strings.NewReader(weights),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, cat.Len())
	assert.False(t, cat.Has("rust"))

	warnings := strings.Join(cat.Warnings(), "\n")
	assert.Contains(t, warnings, `synonym table references unknown skill "rust"`)
	assert.Contains(t, warnings, `weight table references unknown skill "rust"`)
}

func TestLoad_UnparsableWeightFallsBackToDefault(t *testing.T) {
	weights := "skill,weight\npython,heavy\n"

	cat, err := Load(strings.NewReader(skillsCSV), nil, strings.NewReader(weights))
	require.NoError(t, err)

	assert.Equal(t, DefaultWeight, cat.Weight("python"))
	assert.Contains(t, strings.Join(cat.Warnings(), "\n"), "unparsable weight")
}

func TestLoad_DuplicateAndMixedCaseSkills(t *testing.T) {
	skills := "skill\nPython\npython\n  SQL  \n"

	cat, err := Load(strings.NewReader(skills), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, cat.Len())
	assert.True(t, cat.Has("python"))
	assert.True(t, cat.Has("SQL"))
}

func TestMatchers_WordBoundaries(t *testing.T) {
	cat, err := Load(strings.NewReader("skill\nr\nc++\nsql server\n"), nil, nil)
	require.NoError(t, err)

	matches := func(skill, text string) bool {
		for _, re := range cat.Matchers(skill) {
			if re.MatchString(text) {
				return true
			}
		}
		return false
	}

	assert.True(t, matches("r", "experience with r and python"))
	assert.False(t, matches("r", "experienced developer"), "single-letter skill must not hit inside words")
	assert.True(t, matches("c++", "modern c++ development"))
	assert.False(t, matches("c++", "c development"), "regex metacharacters must be escaped")
	assert.True(t, matches("sql server", "administered sql server clusters"))
	assert.False(t, matches("sql server", "sql and a web server"), "multi-word phrase must be contiguous")
}

func TestLoadJSON_ValidDocument(t *testing.T) {
	doc := `{
		"skills": [
			{"name": "Python", "synonyms": ["py"], "weight": 2.0},
			{"name": "sql"}
		]
	}`

	cat, err := LoadJSON(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, 2.0, cat.Weight("python"))
	assert.Equal(t, []string{"python", "py"}, cat.Variants("python"))
	assert.Equal(t, DefaultWeight, cat.Weight("sql"))
}

func TestLoadJSON_SchemaViolationIsFatal(t *testing.T) {
	doc := `{"skills": [{"synonyms": ["py"]}]}`

	_, err := LoadJSON(strings.NewReader(doc))
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Error(), "invalid catalog document")
}
