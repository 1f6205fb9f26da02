package roadmap

import "strings"

// SkillTemplate is a pre-defined roadmap step suggested for a new goal.
type SkillTemplate struct {
	Title                 string `json:"title"`
	Description           string `json:"description"`
	EstimatedDurationDays int    `json:"estimated_duration_days"`
	OrderInRoadmap        int    `json:"order_in_roadmap"`
}

// Template names.
const (
	TemplateSeniorEngineer = "senior software engineer"
	TemplateFullStack      = "full stack developer"
	TemplateFrontend       = "frontend developer"
	TemplateDefault        = "default"
)

var skillTemplates = map[string][]SkillTemplate{
	TemplateSeniorEngineer: {
		{Title: "Advanced React Patterns", Description: "Master hooks, context, performance optimization, and component design patterns", EstimatedDurationDays: 21, OrderInRoadmap: 0},
		{Title: "System Design Fundamentals", Description: "Learn scalability, load balancing, databases, caching, and microservices", EstimatedDurationDays: 28, OrderInRoadmap: 1},
		{Title: "Data Structures & Algorithms", Description: "Practice common interview questions, time/space complexity, and problem-solving", EstimatedDurationDays: 42, OrderInRoadmap: 2},
		{Title: "Leadership & Communication", Description: "Develop mentoring skills, technical communication, and project leadership", EstimatedDurationDays: 14, OrderInRoadmap: 3},
	},
	TemplateFullStack: {
		{Title: "Frontend Framework Mastery", Description: "Deep dive into React/Vue/Angular with state management and routing", EstimatedDurationDays: 30, OrderInRoadmap: 0},
		{Title: "Backend API Development", Description: "Build RESTful APIs and GraphQL endpoints with Node.js/Python/Java", EstimatedDurationDays: 25, OrderInRoadmap: 1},
		{Title: "Database Design & Management", Description: "Learn SQL, NoSQL, database optimization, and data modeling", EstimatedDurationDays: 20, OrderInRoadmap: 2},
		{Title: "DevOps & Deployment", Description: "Master CI/CD, containerization, cloud services, and monitoring", EstimatedDurationDays: 18, OrderInRoadmap: 3},
	},
	TemplateFrontend: {
		{Title: "Modern JavaScript/TypeScript", Description: "ES6+, async/await, modules, and TypeScript fundamentals", EstimatedDurationDays: 14, OrderInRoadmap: 0},
		{Title: "React Ecosystem", Description: "React, Next.js, state management (Redux/Zustand), and testing", EstimatedDurationDays: 28, OrderInRoadmap: 1},
		{Title: "CSS Architecture & Design", Description: "Tailwind/Styled Components, responsive design, and animations", EstimatedDurationDays: 14, OrderInRoadmap: 2},
		{Title: "Performance & Accessibility", Description: "Web vitals, SEO, WCAG guidelines, and optimization techniques", EstimatedDurationDays: 10, OrderInRoadmap: 3},
	},
	TemplateDefault: {
		{Title: "Foundation Knowledge", Description: "Build the core understanding needed for your goal", EstimatedDurationDays: 14, OrderInRoadmap: 0},
		{Title: "Practical Application", Description: "Apply knowledge through hands-on projects and practice", EstimatedDurationDays: 21, OrderInRoadmap: 1},
		{Title: "Advanced Concepts", Description: "Master complex topics and edge cases", EstimatedDurationDays: 18, OrderInRoadmap: 2},
		{Title: "Real-World Implementation", Description: "Implement solutions in production-like environments", EstimatedDurationDays: 14, OrderInRoadmap: 3},
	},
}

// TemplateFor picks the template name for a goal title. Rules are checked in order and
// the first match wins.
func TemplateFor(goalTitle string) string {
	title := strings.ToLower(goalTitle)
	switch {
	case strings.Contains(title, "senior") &&
		(strings.Contains(title, "software") || strings.Contains(title, "engineer")):
		return TemplateSeniorEngineer
	case strings.Contains(title, "full stack") || strings.Contains(title, "fullstack"):
		return TemplateFullStack
	case strings.Contains(title, "frontend") || strings.Contains(title, "front-end") ||
		strings.Contains(title, "react"):
		return TemplateFrontend
	default:
		return TemplateDefault
	}
}

// ExpandGoalTemplate returns the suggested skills for a goal title. The result is a
// fresh copy; callers may modify it.
func ExpandGoalTemplate(goalTitle string) []SkillTemplate {
	template := skillTemplates[TemplateFor(goalTitle)]
	out := make([]SkillTemplate, len(template))
	copy(out, template)
	return out
}
