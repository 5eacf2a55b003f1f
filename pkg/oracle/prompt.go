package oracle

import "fmt"

const promptTemplate = `You are analyzing an image with a numbered grid overlay. Your task is to identify which grid cells contain any part of: %s

Look at each numbered cell and determine:
1. Does this cell contain any portion of the target object?
2. What's your confidence percentage (0-100)?

Return ONLY a JSON object in this exact format, using double quotes:
{"cells": [cell_numbers_with_object], "confidence_scores": [confidence_for_each_cell]}

Confidence guidelines:
- 90-100: Most of cell contains object
- 80-89: About half the cell contains object
- 70-79: Substantial portion but less than half
- 60-69: Small edge or corner of object
- Below 60: Too uncertain - omit cell

Only include cells with confidence >= 60. Sort cell numbers in ascending order.
If the object is not visible, return {"cells": [], "confidence_scores": []}.`

func BuildPrompt(target string) string {
	return fmt.Sprintf(promptTemplate, target)
}
