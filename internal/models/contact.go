package models

// ContactPartitionKey is the partition every contact row is stored under
const ContactPartitionKey = "contact"

// Property names of a contact row
const (
	PropertyFirstName = "firstName"
	PropertyLastName  = "lastName"
	PropertyEmail     = "email"
)

// Contact is the shape in which a contact is returned to callers.
// ID is the row key of the backing table row.
type Contact struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// ContactInput holds the client-writable fields of a contact.
// Any id sent by the client is dropped when a request body is decoded into it.
type ContactInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Properties returns the input as table row properties
func (in *ContactInput) Properties() map[string]any {
	if in == nil {
		return map[string]any{}
	}

	return map[string]any{
		PropertyFirstName: in.FirstName,
		PropertyLastName:  in.LastName,
		PropertyEmail:     in.Email,
	}
}

// WithID builds the Contact stored under id from the input
func (in *ContactInput) WithID(id string) *Contact {
	contact := &Contact{ID: id}
	if in != nil {
		contact.FirstName = in.FirstName
		contact.LastName = in.LastName
		contact.Email = in.Email
	}
	return contact
}

// SeedContacts returns the demo contacts written by a reset, in insertion order
func SeedContacts() []ContactInput {
	return []ContactInput{
		{FirstName: "Eric", LastName: "Côté", Email: "ericcote@reactAcademy.live"},
		{FirstName: "Satya", LastName: "Nadella", Email: "satyan@microsoft.com"},
		{FirstName: "Mark", LastName: "Zuckerberg", Email: "zuck@fb.com"},
		{FirstName: "Jeff", LastName: "Bezos", Email: "jeff@amazon.com"},
		{FirstName: "Tim", LastName: "Cook", Email: "tcook@apple.com"},
		{FirstName: "Sundar", LastName: "Pichai", Email: "sundar@google.com"},
	}
}
