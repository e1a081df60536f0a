package repository

import (
	"time"

	"codemarket/internal/domain"
)

const seedAuthor = "0xA0A54f674A1f186FA12F39E9E05f4D0de5e2646D"

// SeedListings returns the built-in catalog, stamped with createdAt
func SeedListings(createdAt time.Time) []domain.Listing {
	return []domain.Listing{
		{
			ID:           "1",
			Title:        "React Data Table Component",
			Description:  "A fully featured data table with sorting, filtering, and pagination",
			Price:        domain.ListingPrice,
			Author:       seedAuthor,
			Rating:       4.8,
			Sales:        1243,
			Category:     "react",
			Tags:         []string{"component", "table", "data"},
			PreviewImage: "https://images.unsplash.com/photo-1555066931-4365d14bab8c?auto=format&fit=crop&w=400&q=80",
			CodePreview: `const DataTable = ({ data, columns }) => {
  const [sortField, setSortField] = useState(null);
  const [sortDirection, setSortDirection] = useState('asc');

  const sortedData = React.useMemo(() => {
    if (!sortField) return data;
    return [...data].sort((a, b) => compare(a[sortField], b[sortField], sortDirection));
  }, [data, sortField, sortDirection]);

  return <table className="w-full">{/* rows */}</table>;
};`,
			CreatedAt: createdAt,
		},
		{
			ID:           "2",
			Title:        "Authentication Flow Bundle",
			Description:  "Complete authentication system with login, signup, password reset, and JWT handling",
			Price:        domain.ListingPrice,
			Author:       seedAuthor,
			Rating:       4.9,
			Sales:        2156,
			Category:     "javascript",
			Tags:         []string{"authentication", "security", "jwt"},
			PreviewImage: "https://images.unsplash.com/photo-1526374965328-7f61d4dc18c5?auto=format&fit=crop&w=400&q=80",
			CodePreview: `const authService = {
  login: async (credentials) => {
    const response = await fetch('/api/auth/login', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(credentials)
    });
    const data = await response.json();
    if (!response.ok) throw new Error(data.message);
    return data.user;
  },
};`,
			CreatedAt: createdAt,
		},
	}
}
