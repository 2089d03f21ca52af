// Command seed loads demo content into a Supabase project: profiles,
// community posts, places, services and events. It needs the service role
// key since it writes across users.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ninamcunha/amooora-backend/supabase/client"
)

func main() {
	envFile := flag.String("env", ".env", "Path to .env with SUPABASE_URL and SERVICE_ROLE_KEY")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Fatalf("load env (%s): %v", *envFile, err)
	}

	url := os.Getenv("SUPABASE_URL")
	serviceRole := os.Getenv("SERVICE_ROLE_KEY")
	if url == "" || serviceRole == "" {
		log.Fatal("SUPABASE_URL and SERVICE_ROLE_KEY are required")
	}

	c, err := client.New(client.Config{URL: url, APIKey: serviceRole})
	if err != nil {
		log.Fatalf("supabase client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := seed(ctx, c); err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Println("seed complete")
}

type row map[string]any

func insert(ctx context.Context, c *client.Client, table string, rows []row) error {
	for _, r := range rows {
		if err := c.From(table).Insert(ctx, r, nil); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	fmt.Printf("seeded %d rows into %s\n", len(rows), table)
	return nil
}

func seed(ctx context.Context, c *client.Client) error {
	userID := uuid.NewString()
	if err := insert(ctx, c, "profiles", []row{{
		"id":     userID,
		"name":   "Equipe Amooora",
		"email":  "equipe@amooora.com.br",
		"avatar": "https://placehold.co/96x96",
		"bio":    "Perfil oficial da comunidade",
	}}); err != nil {
		return err
	}

	posts := []row{
		{
			"id":       uuid.NewString(),
			"user_id":  userID,
			"title":    "Bem-vindes à comunidade!",
			"content":  "Esse é o espaço pra trocar dicas, pedir apoio e divulgar eventos.",
			"category": "Geral",
		},
		{
			"id":          uuid.NewString(),
			"user_id":     userID,
			"title":       "Rede de apoio em SP",
			"content":     "Quem topa montar um grupo de acolhimento na zona leste?",
			"category":    "Apoio",
			"is_trending": true,
		},
		{
			"id":       uuid.NewString(),
			"user_id":  userID,
			"title":    "Sarau no fim do mês",
			"content":  "Vai ter sarau aberto, tragam seus textos!",
			"category": "Eventos",
		},
	}
	if err := insert(ctx, c, "community_posts", posts); err != nil {
		return err
	}

	if err := insert(ctx, c, "places", []row{
		{
			"id":          uuid.NewString(),
			"name":        "Café Diverso",
			"description": "Café e livraria com programação cultural",
			"address":     "Rua Augusta, 1200 - São Paulo",
			"category":    "Gastronomia",
			"rating":      4.8,
		},
		{
			"id":          uuid.NewString(),
			"name":        "Espaço Acolher",
			"description": "Centro comunitário com rodas de conversa semanais",
			"address":     "Av. Paulista, 900 - São Paulo",
			"category":    "Comunidade",
			"rating":      4.9,
		},
	}); err != nil {
		return err
	}

	if err := insert(ctx, c, "services", []row{
		{
			"id":            uuid.NewString(),
			"name":          "Terapia afirmativa",
			"description":   "Atendimento psicológico online",
			"category":      "Saúde Mental",
			"category_slug": "saúde-mental",
			"price":         120.0,
			"provider":      "Dra. Carla Souza",
		},
	}); err != nil {
		return err
	}

	return insert(ctx, c, "events", []row{
		{
			"id":          uuid.NewString(),
			"name":        "Sarau Diverso",
			"description": "Noite de poesia e música",
			"date":        time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
			"location":    "Café Diverso",
			"category":    "Cultura",
			"price":       0.0,
		},
	})
}
