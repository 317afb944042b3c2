package detection

// The model is called with four parts in this order: Instruction, ImageLabel,
// the uploaded image, ObjectsLabel.
const (
	Instruction = "Extract and list all the food items from the provided image. " +
		"Provide the names in alphabetical order. " +
		"Don't include non-food items in the list. List each item on a new line."

	ImageLabel   = "Image: "
	ObjectsLabel = "List of Objects: "
)
