package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "name").
		From("players").
		Where(Eq("country", "India"), IsNull("date_of_birth"), ContainsFold("name", "Ko_h")).
		OrderBy("name ASC", "id ASC").
		Limit(10).
		Offset(20).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := `SELECT id, name FROM players WHERE country = ? AND date_of_birth IS NULL AND LOWER(name) LIKE ? ESCAPE '\' ORDER BY name ASC, id ASC LIMIT 10 OFFSET 20`
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "India" || args[1] != `%ko\_h%` {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_DollarPlaceholders(t *testing.T) {
	query, args, err := Select("id").
		From("matches").
		Where(Gte("match_date", "2024-01-01"), Lte("match_date", "2024-12-31"), InStrings("format", []string{"ODI", "T20I"})).
		PlaceholderFormat(Dollar).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM matches WHERE match_date >= $1 AND match_date <= $2 AND format IN ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, _, err := Select("id").From("players").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM players WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("venues").
		Columns("id", "name").
		Values("v1", "Eden Gardens").
		Suffix("ON CONFLICT (id) DO NOTHING").
		PlaceholderFormat(Dollar).
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO venues (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "v1" || args[1] != "Eden Gardens" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("players").
		Set("name", "new").
		SetExpr("updated_at", "COALESCE(?, updated_at)", "2024-01-01").
		Where(Eq("id", "p1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE players SET name = ?, updated_at = COALESCE(?, updated_at) WHERE id = ?"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "new" || args[2] != "p1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateAndDeleteRequireWhere(t *testing.T) {
	if _, _, err := Update("players").Set("name", "x").ToSQL(); err == nil {
		t.Fatalf("expected error for update without where")
	}
	if _, _, err := DeleteFrom("players").ToSQL(); err == nil {
		t.Fatalf("expected error for delete without where")
	}
}

func TestModelBuilders(t *testing.T) {
	type row struct {
		ID      string `db:"id"`
		Name    string `db:"name"`
		Created string `db:"created_at"`
		skipped string
	}
	item := row{ID: "p1", Name: "Virat Kohli", Created: "now", skipped: "x"}

	query, args, err := InsertModel("players", item, Question)
	if err != nil {
		t.Fatalf("build insert model: %v", err)
	}
	if query != "INSERT INTO players (id, name, created_at) VALUES (?, ?, ?)" || len(args) != 3 {
		t.Fatalf("unexpected insert: %s %+v", query, args)
	}

	query, args, err = UpdateModel("players", "id", item, Dollar, "created_at")
	if err != nil {
		t.Fatalf("build update model: %v", err)
	}
	if query != "UPDATE players SET name = $1 WHERE id = $2" {
		t.Fatalf("unexpected update: %s", query)
	}
	if len(args) != 2 || args[0] != "Virat Kohli" || args[1] != "p1" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if cols := Columns(item); len(cols) != 3 || cols[2] != "created_at" {
		t.Fatalf("unexpected columns: %+v", cols)
	}
}
