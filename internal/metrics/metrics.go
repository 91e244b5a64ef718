package metrics

const Namespace = "quill"
