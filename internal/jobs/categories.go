package jobs

// Category is a user facing job category.
type Category struct {
	Value string
	Label string
}

var Categories = []Category{
	{Value: "all", Label: "All Categories"},
	{Value: "software-dev", Label: "Software Development"},
	{Value: "data", Label: "Data"},
	{Value: "devops", Label: "DevOps / SysAdmin"},
	{Value: "design", Label: "Design"},
	{Value: "product", Label: "Product"},
	{Value: "marketing", Label: "Marketing"},
	{Value: "customer-support", Label: "Customer Support"},
	{Value: "finance", Label: "Finance / Legal"},
	{Value: "qa", Label: "QA"},
	{Value: "writing", Label: "Writing"},
}

var remotiveCategories = map[string]string{
	"software-dev":     "software-dev",
	"data":             "data",
	"devops":           "devops-sysadmin",
	"design":           "design",
	"marketing":        "marketing",
	"product":          "product",
	"customer-support": "customer-support",
	"finance":          "finance-legal",
	"hr":               "hr",
	"qa":               "qa",
	"writing":          "writing",
	"all":              "",
}

// RemotiveCategory maps a user category onto the Remotive category slug.
// Unknown categories are passed through unchanged.
func RemotiveCategory(category string) string {
	if category == "" {
		return ""
	}
	if mapped, ok := remotiveCategories[category]; ok {
		return mapped
	}
	return category
}
