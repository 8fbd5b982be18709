package cascade

// Categories of the project-management domain.
var (
	Users       = Category{Name: "users", Collection: "users", Key: "_id", DeleteBy: "email"}
	Projects    = Category{Name: "projects", Collection: "projects", Key: "_id"}
	Teams       = Category{Name: "teams", Collection: "teams", Key: "_id"}
	Assignments = Category{Name: "assignments", Collection: "assignments", Key: "_id"}
	Tasks       = Category{Name: "tasks", Collection: "tasks", Key: "_id"}
)

// ProjectManagerGraph is the dependency table for removing project managers.
// Adding a dependent entity type means adding a category and an edge here.
func ProjectManagerGraph() *Graph {
	return MustGraph(Users,
		[]Category{Projects, Teams, Assignments, Tasks},
		[]Edge{
			{Parent: Users.Name, Child: Projects.Name, Field: "created_by", Link: ChildRef},
			{Parent: Users.Name, Child: Teams.Name, Field: "created_by", Link: ChildRef},
			{Parent: Users.Name, Child: Assignments.Name, Field: "assigned_by", Link: ChildRef},
			{Parent: Assignments.Name, Child: Tasks.Name, Field: "task_ids", Link: ParentRef},
		},
	)
}
