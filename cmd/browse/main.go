package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"coursedeck/internal/catalog"
	"coursedeck/internal/directory"
	"coursedeck/internal/domain"
	"coursedeck/internal/session"
)

// browse is a small terminal client for the catalog service: list and
// filter courses, inspect one course with its lessons, or log in and seed
// sample data.
func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "catalog service base URL")
		search   = flag.String("search", "", "case-insensitive search over title, description, category and tags")
		category = flag.String("category", "", "exact category filter")
		price    = flag.String("price", "all", "price filter: all, free or paid")
		sortBy   = flag.String("sort", "newest", "sort order: newest, price-asc, price-desc or rating")
		ownerID  = flag.String("owner", "", "only courses owned by this member id (requires login)")
		courseID = flag.String("course", "", "show one course with its lessons instead of the listing")
		email    = flag.String("email", "", "log in with this email before running")
		password = flag.String("password", "", "password for -email")
		seed     = flag.Int("seed", 0, "create this many sample courses for the logged-in member")
	)
	flag.Parse()

	client := directory.New(*baseURL, session.NewMemoryCache())

	if *email != "" {
		member, err := client.Login(*email, *password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
		fmt.Printf("logged in as %s (%s)\n", member.Email, member.ID)
	}

	if *seed > 0 {
		result, err := client.Seed(*seed)
		if err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		fmt.Printf("seeded %d courses (%d errors)\n", result.Created, result.Errors)
		for _, detail := range result.ErrorDetails {
			fmt.Println("  " + detail)
		}
		return
	}

	if *courseID != "" {
		showCourse(client, *courseID)
		return
	}

	courses, msg, err := client.List(*ownerID)
	if err != nil {
		log.Fatalf("list failed: %v", err)
	}
	if msg != "" {
		fmt.Fprintln(os.Stderr, "note: "+msg)
	}

	filtered := catalog.Apply(courses, catalog.Filters{
		Search:   *search,
		Category: *category,
		Price:    catalog.ParsePriceFilter(*price),
		Sort:     catalog.ParseSort(*sortBy),
	})
	printCourses(filtered)
}

func showCourse(client *directory.Client, id string) {
	course, err := client.Get(id)
	if err != nil {
		log.Fatalf("get course: %v", err)
	}
	fmt.Printf("%s\n  %s\n  category: %s  price: %s  status: %s\n",
		course.Title, course.Description, course.Category, formatPrice(course), course.Status)
	if len(course.Tags) > 0 {
		fmt.Printf("  tags: %s\n", strings.Join(course.Tags, ", "))
	}

	lessons, err := client.Lessons(id)
	if err != nil {
		log.Fatalf("list lessons: %v", err)
	}
	if len(lessons) == 0 {
		fmt.Println("  no lessons")
		return
	}
	for _, lesson := range lessons {
		fmt.Printf("  %2d. %s (%d min)\n", lesson.Order, lesson.Title, lesson.Duration)
	}
}

func printCourses(courses []domain.Course) {
	if len(courses) == 0 {
		fmt.Println("no courses match")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPRICE\tSTATUS")
	for _, course := range courses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			course.ID, course.Title, course.Category, formatPrice(course), course.Status)
	}
	w.Flush()
}

func formatPrice(course domain.Course) string {
	if course.Free() {
		return "free"
	}
	return fmt.Sprintf("$%.2f", course.Price)
}
