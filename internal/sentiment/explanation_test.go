package sentiment

import (
	"testing"

	"github.com/spacesedan/sentidash/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestExplain(t *testing.T) {
	assert.Equal(t,
		"The text 'good day' is classified as Positive due to words and phrases indicating approval or satisfaction. The polarity score is 0.44.",
		Explain("good day", models.LabelPositive, 0.4404))

	assert.Equal(t,
		"The text 'bad day' is classified as Negative due to words and phrases indicating disapproval or dissatisfaction. The polarity score is -0.54.",
		Explain("bad day", models.LabelNegative, -0.5423))

	assert.Equal(t,
		"The text 'a day' is classified as Neutral. The polarity score is 0.00. This could be due to a lack of strong emotional language or a balance of positive and negative terms.",
		Explain("a day", models.LabelNeutral, 0))
}
