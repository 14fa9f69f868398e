package telegram

import (
	"fmt"
	"strings"

	"meal-planner/internal/app"
	"meal-planner/internal/grocery"
	"meal-planner/internal/metrics"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape makes user and generator text safe inside legacy Markdown messages.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func checkbox(checked bool) string {
	if checked {
		return "✅"
	}
	return "⬜"
}

func formatPlanMarkdown(view *app.PlanView) string {
	plan := view.Plan

	var pb strings.Builder
	fmt.Fprintf(&pb, "📅 *Meal Plan: week of %s*\n\n", plan.WeekStart.Format("2006-01-02"))

	for _, meal := range plan.Meals {
		day := meal.Day
		if day == "" {
			day = "Anytime"
		}
		fmt.Fprintf(&pb, "*%s*: %s", escape(day), escape(meal.Title()))
		if meal.MainDish != nil && meal.MainDish.PrepTime != "" {
			fmt.Fprintf(&pb, " (%s)", escape(meal.MainDish.PrepTime))
		}
		pb.WriteString("\n")

		for i, sd := range meal.SideDishes {
			if meal.MainDish == nil && i == 0 {
				continue
			}
			fmt.Fprintf(&pb, "  + %s\n", escape(sd.Name))
		}
		if plan.IncludeBeverages {
			for _, c := range meal.Cocktails() {
				fmt.Fprintf(&pb, "  🍸 %s\n", escape(c.Name))
			}
			if meal.BeveragePairing != nil && meal.BeveragePairing.Wine != nil {
				fmt.Fprintf(&pb, "  🍷 %s\n", escape(meal.BeveragePairing.Wine.Type))
			}
		}
		pb.WriteString("\n")
	}

	return pb.String()
}

func formatGroceryMarkdown(view *app.PlanView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🛒 *Grocery List* (%d left)\n", view.Remaining)

	if len(view.Categorized) == 0 && len(view.Grocery.ManualItems) == 0 {
		sb.WriteString("\n_Nothing to buy yet_\n")
	}

	for _, group := range view.Categorized {
		fmt.Fprintf(&sb, "\n*%s*\n", strings.ToUpper(group.Name[:1])+group.Name[1:])
		for _, it := range group.Items {
			writeItem(&sb, it)
		}
	}

	if len(view.Grocery.ManualItems) > 0 {
		sb.WriteString("\n*Extras*\n")
		for _, it := range view.Grocery.ManualItems {
			writeItem(&sb, it)
		}
	}

	if len(view.Wines) > 0 {
		sb.WriteString("\n🍷 *Wine*\n")
		for _, w := range view.Wines {
			fmt.Fprintf(&sb, "• %s x%d\n", escape(w.Type), w.Bottles)
		}
	}

	return sb.String()
}

func writeItem(sb *strings.Builder, it grocery.Item) {
	fmt.Fprintf(sb, "%s %s", checkbox(it.Checked), escape(it.Item))
	if it.Quantity != "" {
		fmt.Fprintf(sb, " (%s)", escape(it.Quantity))
	}
	sb.WriteString("\n")
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Uptime: %s\n", health.Uptime)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataDiskSize)

	return sb.String()
}
