package sentiment

import (
	"fmt"

	"github.com/spacesedan/sentidash/internal/models"
)

func Explain(text string, label models.Label, polarity float64) string {
	switch label {
	case models.LabelPositive:
		return fmt.Sprintf("The text '%s' is classified as Positive due to words and phrases indicating approval or satisfaction. The polarity score is %.2f.", text, polarity)
	case models.LabelNegative:
		return fmt.Sprintf("The text '%s' is classified as Negative due to words and phrases indicating disapproval or dissatisfaction. The polarity score is %.2f.", text, polarity)
	default:
		return fmt.Sprintf("The text '%s' is classified as Neutral. The polarity score is %.2f. This could be due to a lack of strong emotional language or a balance of positive and negative terms.", text, polarity)
	}
}
