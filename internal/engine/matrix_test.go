package engine

import (
	"testing"

	"github.com/google/uuid"
)

func TestCompatibilityScore(t *testing.T) {
	cases := []struct {
		name string
		a    UserProfile
		b    UserProfile
		want int
	}{
		{
			name: "shared_cuisine_tags",
			a:    UserProfile{FoodPreferences: []string{"한식", "중식"}},
			b:    UserProfile{FoodPreferences: []string{"한식", "일식"}},
			want: 15,
		},
		{
			name: "two_shared_cuisine_tags",
			a:    UserProfile{FoodPreferences: []string{"한식", "중식"}},
			b:    UserProfile{FoodPreferences: []string{"중식", "한식"}},
			want: 30,
		},
		{
			name: "shared_lunch_styles",
			a:    UserProfile{LunchStyles: []string{"빠른 식사", "가성비"}},
			b:    UserProfile{LunchStyles: []string{"가성비"}},
			want: 20,
		},
		{
			name: "age_group_match",
			a:    UserProfile{AgeGroup: "30대"},
			b:    UserProfile{AgeGroup: "30대"},
			want: 20,
		},
		{
			name: "empty_age_groups_do_not_match",
			a:    UserProfile{},
			b:    UserProfile{},
			want: 0,
		},
		{
			name: "gender_diversity_bonus",
			a:    UserProfile{Gender: "남"},
			b:    UserProfile{Gender: "여"},
			want: 15,
		},
		{
			name: "same_gender_no_bonus",
			a:    UserProfile{Gender: "남"},
			b:    UserProfile{Gender: "남"},
			want: 0,
		},
		{
			name: "everything_stacked",
			a:    UserProfile{FoodPreferences: []string{"한식"}, LunchStyles: []string{"맛집 탐방"}, AgeGroup: "20대", Gender: "여"},
			b:    UserProfile{FoodPreferences: []string{"한식"}, LunchStyles: []string{"맛집 탐방"}, AgeGroup: "20대", Gender: "남"},
			want: 15 + 20 + 20 + 15,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := compatibilityScore(tc.a, tc.b)
			if got != tc.want {
				t.Fatalf("compatibilityScore=%d, want %d", got, tc.want)
			}
			if rev := compatibilityScore(tc.b, tc.a); rev != got {
				t.Fatalf("compatibilityScore not symmetric: %d vs %d", got, rev)
			}
		})
	}
}

func TestPatternScore(t *testing.T) {
	cases := []struct {
		name   string
		countA int
		countB int
		want   int
	}{
		{name: "equal_counts", countA: 4, countB: 4, want: 20},
		{name: "diff_two", countA: 6, countB: 4, want: 20},
		{name: "diff_three", countA: 1, countB: 4, want: 10},
		{name: "diff_five", countA: 9, countB: 4, want: 10},
		{name: "diff_six", countA: 10, countB: 4, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := patternScore(tc.countA, tc.countB)
			if got != tc.want {
				t.Fatalf("patternScore(%d,%d)=%d, want %d", tc.countA, tc.countB, got, tc.want)
			}
			if rev := patternScore(tc.countB, tc.countA); rev != got {
				t.Fatalf("patternScore not symmetric: %d vs %d", got, rev)
			}
		})
	}
}

func TestBuildMatrixSymmetry(t *testing.T) {
	users := []UserProfile{
		{ID: uuid.New(), FoodPreferences: []string{"한식"}, AgeGroup: "20대", Gender: "여"},
		{ID: uuid.New(), FoodPreferences: []string{"한식", "중식"}, AgeGroup: "30대", Gender: "남"},
		{ID: uuid.New(), LunchStyles: []string{"가성비"}, Gender: "남"},
	}
	counts := map[uuid.UUID]int{
		users[0].ID: 1,
		users[1].ID: 4,
		users[2].ID: 12,
	}
	m := BuildMatrix(users, counts)
	for i := range users {
		for j := range users {
			if i == j {
				continue
			}
			ab := m.Score(users[i].ID, users[j].ID)
			ba := m.Score(users[j].ID, users[i].ID)
			if ab != ba {
				t.Fatalf("matrix asymmetric for pair (%d,%d): %+v vs %+v", i, j, ab, ba)
			}
		}
	}
	if got := m.Score(users[0].ID, uuid.New()); got != (PairScore{}) {
		t.Fatalf("unknown pair should score zero, got %+v", got)
	}
}
