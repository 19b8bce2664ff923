package domain

const (
	StepAppBackend     = "app_backend"
	StepBackend        = "backend"
	StepORM            = "orm"
	StepFileStorage    = "file_storage"
	StepAuthentication = "authentication"
	StepPayment        = "payment"
	StepAIProvider     = "ai_provider"
	StepEmailService   = "email_service"
	StepDeployment     = "deployment"
)

// Catalog returns the wizard steps in presentation order. The option values
// are the durable contract; labels are display-only.
func Catalog() []Step {
	return []Step{
		{
			ID:    StepAppBackend,
			Title: "App Framework",
			Options: []Option{
				{Value: "next", Label: "Next.js"},
				{Value: "vite", Label: "Vite"},
			},
		},
		{
			ID:    StepBackend,
			Title: "Backend",
			Options: []Option{
				{Value: "supabase", Label: "Supabase"},
				{Value: "firebase", Label: "Firebase"},
				{Value: "convex", Label: "Convex"},
			},
		},
		{
			ID:    StepORM,
			Title: "ORM",
			Options: []Option{
				{Value: "prisma", Label: "Prisma"},
				{Value: "drizzle", Label: "Drizzle"},
			},
		},
		{
			ID:    StepFileStorage,
			Title: "File Storage",
			Options: []Option{
				{Value: "supabase", Label: "Supabase Storage"},
				{Value: "firebase", Label: "Firebase Storage"},
				{Value: "convex", Label: "Convex Storage"},
				{Value: "s3", Label: "AWS S3"},
			},
		},
		{
			ID:    StepAuthentication,
			Title: "Authentication",
			Options: []Option{
				{Value: "nextauth", Label: "NextAuth"},
				{Value: "clerk", Label: "Clerk"},
			},
		},
		{
			ID:    StepPayment,
			Title: "Payments",
			Options: []Option{
				{Value: "stripe", Label: "Stripe"},
				{Value: "razorpay", Label: "Razorpay"},
				{Value: "lemon", Label: "Lemon Squeezy"},
			},
		},
		{
			ID:    StepAIProvider,
			Title: "AI Provider",
			Options: []Option{
				{Value: "openai", Label: "OpenAI"},
				{Value: "gemini", Label: "Gemini"},
				{Value: "deepseek", Label: "DeepSeek"},
				{Value: "ollama", Label: "Ollama"},
				{Value: "mistral", Label: "Mistral"},
			},
		},
		{
			ID:    StepEmailService,
			Title: "Email Service",
			Options: []Option{
				{Value: "resend", Label: "Resend"},
				{Value: "sendgrid", Label: "SendGrid"},
				{Value: "mailchimp", Label: "Mailchimp"},
			},
		},
		{
			ID:    StepDeployment,
			Title: "Deployment",
			Options: []Option{
				{Value: "vercel", Label: "Vercel"},
				{Value: "docker", Label: "Docker"},
			},
		},
	}
}
