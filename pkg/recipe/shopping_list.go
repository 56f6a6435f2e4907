package recipe

import (
	"fmt"
	"strings"
	"time"
)

const shoppingListSeparator = "------------------------------------------------"

// RenderShoppingList formats the aggregated shopping list as a plain-text
// report. Deterministic for fixed inputs; the caller supplies the timestamp.
// An empty cart keeps the same frame with empty sections.
func RenderShoppingList(fullName string, now time.Time, totals []IngredientTotal, recipeNames []string) string {
	var b strings.Builder

	b.WriteString("Recipebook, the grocery helper.\n")
	b.WriteString("Ingredient list for your planned recipes.\n\n")
	fmt.Fprintf(&b, "Prepared for: %s\n", fullName)
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format("02/01/2006 15:04"))

	b.WriteString("Shopping list:\n")
	b.WriteString(shoppingListSeparator + "\n")
	for _, total := range totals {
		fmt.Fprintf(&b, "%s: %d %s.\n", total.Name, total.Total, total.MeasurementUnit)
	}
	b.WriteString(shoppingListSeparator + "\n\n")

	b.WriteString("Prepared for the recipes:\n")
	b.WriteString(shoppingListSeparator + "\n")
	for _, name := range recipeNames {
		b.WriteString(name + "\n")
	}
	b.WriteString(shoppingListSeparator + "\n\n")

	b.WriteString("Happy shopping!\nSee you again at Recipebook.")

	return b.String()
}
