package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPairs_ColonLabels(t *testing.T) {
	text := "Q: What is encryption?\nA: It is data obfuscation using keys."

	records := ExtractPairs(text, "crypto.txt")
	require.Len(t, records, 1)
	assert.Equal(t, "What is encryption?", records[0].Question)
	assert.Equal(t, "It is data obfuscation using keys.", records[0].Answer)
	assert.Equal(t, "crypto.txt", records[0].Source)
}

func TestExtractPairs_MultiplePairs(t *testing.T) {
	text := "Q: What is a firewall used for?\nA: Filtering network traffic by rule.\n" +
		"Q: What is phishing in practice?\nA: Tricking users into revealing credentials."

	records := ExtractPairs(text, "basics.txt")
	require.Len(t, records, 2)
	assert.Equal(t, "What is a firewall used for?", records[0].Question)
	assert.Equal(t, "What is phishing in practice?", records[1].Question)
	assert.Equal(t, "Tricking users into revealing credentials.", records[1].Answer)
}

func TestExtractPairs_JapaneseLabels(t *testing.T) {
	text := "質問: パスワードはどのように保管すべきですか\n回答: パスワードマネージャーで暗号化して保管します"

	records := ExtractPairs(text, "faq.txt")
	require.Len(t, records, 1)
	assert.Equal(t, "パスワードはどのように保管すべきですか", records[0].Question)
	assert.Equal(t, "パスワードマネージャーで暗号化して保管します", records[0].Answer)
}

func TestExtractPairs_BracketedLabels(t *testing.T) {
	text := "【質問】多要素認証とは何ですか\n【回答】複数の認証要素を組み合わせる仕組みです"

	records := ExtractPairs(text, "mfa.txt")
	require.Len(t, records, 1)
	assert.Equal(t, "多要素認証とは何ですか", records[0].Question)
	assert.Equal(t, "複数の認証要素を組み合わせる仕組みです", records[0].Answer)
}

func TestExtractPairs_NumberedLabels(t *testing.T) {
	text := "Q1. Why rotate signing keys regularly?\nA1. It limits the blast radius of a leak.\n" +
		"Q2. Where should audit logs be shipped?\nA2. To a write-once store off the host."

	records := ExtractPairs(text, "audit.txt")
	require.Len(t, records, 2)
	assert.Equal(t, "Why rotate signing keys regularly?", records[0].Question)
	assert.Equal(t, "To a write-once store off the host.", records[1].Answer)
}

func TestExtractPairs_TooShortFiltered(t *testing.T) {
	text := "Q: hi\nA: yo"

	records := ExtractPairs(text, "short.txt")
	assert.Empty(t, records)
}

func TestExtractPairs_ParagraphFallback(t *testing.T) {
	first := strings.Repeat("Access control policies should be reviewed quarterly. ", 3)
	text := first + "\n\nshort\n\n" + strings.Repeat("Backups must be tested by restoring them. ", 3)

	records := ExtractPairs(text, "policy.txt")
	require.Len(t, records, 2)
	assert.Equal(t, "policy.txt - section 1", records[0].Question)
	assert.Equal(t, "policy.txt - section 2", records[1].Question)
	assert.Equal(t, "policy.txt", records[0].Source)
	assert.Contains(t, records[1].Answer, "Backups must be tested")
}

func TestExtractPairs_FallbackSkippedWhenLabelsMatch(t *testing.T) {
	text := "Q: What is an intrusion detection system?\nA: A monitor that flags suspicious activity.\n\n" +
		strings.Repeat("This long unlabeled paragraph would qualify for the fallback. ", 3)

	records := ExtractPairs(text, "ids.txt")
	require.Len(t, records, 1)
	assert.Equal(t, "What is an intrusion detection system?", records[0].Question)
}

func TestExtractPairs_NothingFound(t *testing.T) {
	records := ExtractPairs("just a short line", "empty.txt")
	assert.Empty(t, records)
}
