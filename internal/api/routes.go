package api

import "github.com/go-chi/chi/v5"

// Routes mounts the authentication endpoints relative to /api/auth.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/exists", h.EmailExists)
}

// Routes mounts the task endpoints relative to /api/tasks. Static segments
// are registered alongside {id}; chi prefers them.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateTask)
	r.Get("/", h.ListTasks)
	r.Get("/status/{status}", h.FilterByStatus)
	r.Get("/priority/{priority}", h.FilterByPriority)
	r.Get("/sorted/priority", h.ListByPriority)
	r.Get("/search", h.SearchByKeyword)
	r.Get("/overdue", h.FindOverdue)
	r.Get("/future", h.FindFuture)
	r.Get("/filter", h.FilterComposite)
	r.Get("/count", h.CountAll)
	r.Get("/count/status/{status}", h.CountByStatus)
	r.Get("/{id}", h.GetTask)
	r.Put("/{id}", h.UpdateTask)
	r.Put("/{id}/status", h.UpdateStatus)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.DeleteTask)
}

// Routes mounts the user directory endpoints relative to /api/users.
func (h *UserHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateUser)
	r.Get("/count", h.CountUsers)
	r.Get("/email/{email}", h.GetUserByEmail)
	r.Get("/{id}", h.GetUser)
	r.Put("/{id}", h.UpdateUser)
	r.Put("/{id}/password", h.UpdatePassword)
	r.Delete("/{id}", h.DeleteUser)
}
